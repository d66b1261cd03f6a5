package clientbundle

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/bkabbarah/coachkit/app/core"
	"github.com/jinzhu/copier"
	"github.com/jinzhu/gorm"
)

// DaysSinceCheckin counts whole days since the last check-in.
func (c *Client) DaysSinceCheckin(now time.Time) int {
	if !c.LastCheckin.Valid {
		return NeverCheckedInDays
	}
	return int(math.Floor(now.Sub(c.LastCheckin.Time).Hours() / 24))
}

func (c *Client) IsAtRisk(now time.Time, thresholdDays int) bool {
	return c.DaysSinceCheckin(now) >= thresholdDays
}

func (c *Client) StatusLabel(now time.Time, thresholdDays int) string {
	if c.IsAtRisk(now, thresholdDays) {
		return StatusAtRisk
	}
	return StatusOnTrack
}

// CurrentWeight is the weight of the newest check-in that has one.
// CheckIns must be ordered newest first.
func (c *Client) CurrentWeight() *float64 {
	for i := range c.CheckIns {
		if c.CheckIns[i].Weight != nil {
			return c.CheckIns[i].Weight
		}
	}
	return nil
}

// StartingWeight is the weight of the oldest check-in that has one.
func (c *Client) StartingWeight() *float64 {
	for i := len(c.CheckIns) - 1; i >= 0; i-- {
		if c.CheckIns[i].Weight != nil {
			return c.CheckIns[i].Weight
		}
	}
	return nil
}

// GoalProgress is the signed percentage of the way from the starting weight
// to the goal weight. It is not clamped: overshooting gives more than 100,
// moving away from the goal gives a negative value.
func (c *Client) GoalProgress() *float64 {
	current := c.CurrentWeight()
	if current == nil || c.GoalWeight == nil {
		return nil
	}
	start := c.StartingWeight()
	if start == nil {
		return nil
	}
	return goalProgress(*start, *current, *c.GoalWeight)
}

func goalProgress(start, current, goal float64) *float64 {
	var progress float64
	switch {
	case start == current:
		progress = 0
	case start == goal:
		progress = 100
	case goal < start:
		progress = (start - current) / (start - goal) * 100
	default:
		progress = (current - start) / (goal - start) * 100
	}
	return &progress
}

// View builds the API representation with computed fields.
func (c *Client) View(now time.Time, thresholdDays int) ClientView {
	view := ClientView{}
	copier.Copy(&view, c)
	view.ID = c.ID
	view.DaysSinceCheckin = c.DaysSinceCheckin(now)
	view.IsAtRisk = c.IsAtRisk(now, thresholdDays)
	view.Status = c.StatusLabel(now, thresholdDays)
	view.CurrentWeight = c.CurrentWeight()
	view.StartingWeight = c.StartingWeight()
	view.GoalProgress = c.GoalProgress()
	view.CheckInCount = len(c.CheckIns)
	view.RecentCheckIns = nil
	if len(c.CheckIns) > 0 {
		n := len(c.CheckIns)
		if n > 5 {
			n = 5
		}
		view.RecentCheckIns = append(CheckIns{}, c.CheckIns[:n]...)
		for i := range view.RecentCheckIns {
			view.RecentCheckIns[i].HasPhoto = view.RecentCheckIns[i].PhotoPath != ""
		}
	}
	return view
}

// Apply copies the set fields of in onto the client.
func (c *Client) Apply(in ClientInput) {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		c.Email = trimmedOrNil(*in.Email)
	}
	if in.GoalWeight != nil {
		c.GoalWeight = in.GoalWeight
	}
	if in.Notes != nil {
		c.Notes = trimmedOrNil(*in.Notes)
	}
}

func trimmedOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (c *Client) Validate() bool {
	c.Errors = make(map[string]string)
	if strings.TrimSpace(c.Name) == "" {
		c.Errors["name"] = "Name is required"
	}
	if c.Email != nil {
		lower := strings.ToLower(*c.Email)
		c.Email = &lower
		if err := core.ValidateFormat(lower); err != nil {
			c.Errors["email"] = err.Error()
		}
	}
	if c.GoalWeight != nil && (math.IsNaN(*c.GoalWeight) || math.IsInf(*c.GoalWeight, 0) || *c.GoalWeight <= 0) {
		c.Errors["goal_weight"] = "Goal weight must be a positive number"
	}
	return len(c.Errors) == 0
}

var ErrClientNotFound = errors.New("client not found")

// LoadClient fetches a client of coachId with its check-ins, newest first.
func LoadClient(ormDB *gorm.DB, coachId, clientId uint) (*Client, error) {
	client := &Client{}
	err := ormDB.
		Preload("CheckIns", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC, id DESC") }).
		Where("id = ? AND coach_id = ?", clientId, coachId).
		First(client).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

// AddCheckIn stores a check-in and refreshes the client's last check-in and
// status in one transaction.
func AddCheckIn(ormDB *gorm.DB, client *Client, checkIn *CheckIn, thresholdDays int) error {
	return Transaction(ormDB, func(tx *gorm.DB) error {
		checkIn.ClientId = client.ID
		if err := tx.Create(checkIn).Error; err != nil {
			return err
		}
		client.LastCheckin = core.NewNullTime(checkIn.CreatedAt)
		client.Status = client.StatusLabel(time.Now(), thresholdDays)
		return tx.Set("gorm:save_associations", false).Model(client).Updates(map[string]interface{}{
			"last_checkin": client.LastCheckin,
			"status":       client.Status,
		}).Error
	})
}

// DeleteClient removes the client and its check-ins for good and returns the
// photo paths the caller should remove from disk.
func DeleteClient(ormDB *gorm.DB, client *Client) ([]string, error) {
	var photos []string
	checkIns := CheckIns{}
	err := Transaction(ormDB, func(tx *gorm.DB) error {
		if err := tx.Where("client_id = ?", client.ID).Find(&checkIns).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("client_id = ?", client.ID).Delete(&CheckIn{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(client).Error
	})
	if err != nil {
		return nil, err
	}
	for _, checkIn := range checkIns {
		if checkIn.PhotoPath != "" {
			photos = append(photos, checkIn.PhotoPath)
		}
	}
	return photos, nil
}

// Transaction runs fn in a gorm transaction.
func Transaction(ormDB *gorm.DB, fn func(tx *gorm.DB) error) error {
	tx := ormDB.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// BeforeCreate starts the check-in clock at creation time.
func (c *Client) BeforeCreate() error {
	if !c.LastCheckin.Valid {
		c.LastCheckin = core.Now()
	}
	if c.Status == "" {
		c.Status = StatusOnTrack
	}
	return nil
}
