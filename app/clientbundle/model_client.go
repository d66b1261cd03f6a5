package clientbundle

import (
	"github.com/bkabbarah/coachkit/app/core"
)

const (
	StatusOnTrack = "on_track"
	StatusAtRisk  = "at_risk"

	// NeverCheckedInDays stands in for "no check-in recorded yet".
	NeverCheckedInDays = 999

	ImportedCheckInNote = "Imported from spreadsheet"
)

// Client is a person coached by one coach.
// swagger:model
type Client struct {
	core.Model
	CoachId     uint          `json:"-" gorm:"index"`
	Name        string        `json:"name" gorm:"not null"`
	Email       *string       `json:"email"`
	LastCheckin core.NullTime `json:"last_checkin"`
	Status      string        `json:"status" gorm:"type:varchar(20);default:'on_track'"`
	GoalWeight  *float64      `json:"goal_weight"`
	Notes       *string       `json:"notes" gorm:"type:text"`

	// CheckIns are newest first once loaded.
	CheckIns CheckIns `json:"check_ins,omitempty" gorm:"foreignkey:ClientId"`

	Errors map[string]string `json:"-" gorm:"-"`
}

type Clients []Client

func (Client) TableName() string {
	return "clients"
}

// CheckIn is an immutable progress entry.
// swagger:model
type CheckIn struct {
	core.Model
	ClientId  uint     `json:"client_id" gorm:"index"`
	Note      string   `json:"note" gorm:"type:text"`
	Weight    *float64 `json:"weight"`
	PhotoPath string   `json:"-"`
	HasPhoto  bool     `json:"has_photo" gorm:"-"`
}

type CheckIns []CheckIn

func (CheckIn) TableName() string {
	return "check_ins"
}

// ClientView is a client with its computed status fields.
// swagger:model
type ClientView struct {
	ID               uint          `json:"id"`
	Name             string        `json:"name"`
	Email            *string       `json:"email"`
	LastCheckin      core.NullTime `json:"last_checkin"`
	Status           string        `json:"status"`
	GoalWeight       *float64      `json:"goal_weight"`
	Notes            *string       `json:"notes"`
	DaysSinceCheckin int           `json:"days_since_checkin"`
	IsAtRisk         bool          `json:"is_at_risk"`
	CurrentWeight    *float64      `json:"current_weight"`
	StartingWeight   *float64      `json:"starting_weight"`
	GoalProgress     *float64      `json:"goal_progress"`
	CheckInCount     int           `json:"check_in_count"`
	RecentCheckIns   CheckIns      `json:"recent_check_ins,omitempty"`
}

// ClientInput is the editable part of a client.
type ClientInput struct {
	Name       *string  `json:"name"`
	Email      *string  `json:"email"`
	GoalWeight *float64 `json:"goal_weight"`
	Notes      *string  `json:"notes"`
}

type GoalInput struct {
	GoalWeight *float64 `json:"goal_weight"`
}
