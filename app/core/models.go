package core

import (
	"net/http"
	"time"
)

// swagger:model
type ResponseData struct {
	Status  int         `json:"status,omitempty"`
	Message string      `json:"message,omitempty"`
	Detail  string      `json:"detail,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Paging  *Paging     `json:"paging,omitempty"`
}

// swagger:model
type Paging struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Offset     int `json:"-"`
	Limit      int `json:"-"`
	TotalCount int `json:"total_count"`
	PageCount  int `json:"page_count"`
}

// Finish fills the counters once the total is known.
func (p *Paging) Finish(totalCount int) {
	p.TotalCount = totalCount
	if p.Limit > 0 {
		p.PageCount = (totalCount + p.Limit - 1) / p.Limit
	}
}

// Model is the base of every persisted entity.
type Model struct {
	ID        uint       `json:"id" gorm:"primary_key"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-" sql:"index"`
}

// Route binds a handler to a method and path below /api/v1.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
	// Public routes skip the session check.
	Public bool
}

// Bundle is a feature module exposing routes.
type Bundle interface {
	GetRoutes() []Route
}
