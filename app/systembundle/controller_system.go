package systembundle

import (
	"fmt"
	"time"

	"github.com/bkabbarah/coachkit/app/clientbundle"
	"github.com/bkabbarah/coachkit/app/core"
	"github.com/bkabbarah/coachkit/app/livefeed"
	"github.com/jinzhu/gorm"
)

type ControllerOptions struct {
	ORM          *gorm.DB
	Hub          *livefeed.Hub
	Tickets      *livefeed.Tickets
	SessionDays  int
	CookieSecure bool
}

// SystemController struct
type SystemController struct {
	core.Controller
	ormDB        *gorm.DB
	hub          *livefeed.Hub
	tickets      *livefeed.Tickets
	sessionDays  int
	cookieSecure bool
	now          func() time.Time
}

// NewSystemController instance
func NewSystemController(base core.Controller, opts ControllerOptions) *SystemController {
	if opts.SessionDays <= 0 {
		opts.SessionDays = core.DefaultSessionDays
	}
	if opts.Tickets == nil {
		opts.Tickets = livefeed.NewTickets()
	}
	return &SystemController{
		Controller:   base,
		ormDB:        opts.ORM,
		hub:          opts.Hub,
		tickets:      opts.Tickets,
		sessionDays:  opts.SessionDays,
		cookieSecure: opts.CookieSecure,
		now:          time.Now,
	}
}

// Migrate creates or updates every table of the service.
func Migrate(ormDB *gorm.DB) error {
	err := ormDB.AutoMigrate(
		&core.Coach{},
		&CoachSession{},
		&clientbundle.Client{},
		&clientbundle.CheckIn{},
	).Error
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// RestoreSessions drops expired sessions and loads the others into cache.
func RestoreSessions(ormDB *gorm.DB, cache *core.SessionCache, now time.Time) (int, error) {
	if err := ormDB.Unscoped().Where("expires_at <= ?", now.UTC()).Delete(&CoachSession{}).Error; err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	sessions := CoachSessions{}
	if err := ormDB.Preload("Coach").Find(&sessions).Error; err != nil {
		return 0, fmt.Errorf("load sessions: %w", err)
	}
	restored := 0
	for _, session := range sessions {
		if session.Coach.ID == 0 || !session.Coach.IsActive {
			continue
		}
		cache.Put(session.SessionToken, session.Coach, session.ExpiresAt.Time)
		restored++
	}
	return restored, nil
}
