package systembundle

import (
	"github.com/bkabbarah/coachkit/app/core"
)

// CoachSession is a login token of a coach. Sessions are loaded into the
// session cache at start-up.
type CoachSession struct {
	core.Model
	CoachId      uint          `json:"-" gorm:"index"`
	Coach        core.Coach    `json:"coach"`
	SessionToken string        `json:"session_token" gorm:"type:VARCHAR(36);unique_index"`
	LoginTime    core.NullTime `json:"login_time"`
	ExpiresAt    core.NullTime `json:"expires_at"`
}

type CoachSessions []CoachSession

func (CoachSession) TableName() string {
	return "coach_sessions"
}

// swagger:model
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// swagger:model
type TicketResponse struct {
	Ticket string `json:"ticket"`
}
