package clientbundle

import (
	"errors"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/bkabbarah/coachkit/app/core"
	"github.com/bkabbarah/coachkit/app/textgen"
	"github.com/jinzhu/gorm"
)

const (
	EventClient  = "CLIENT"
	EventCheckIn = "CHECKIN"

	ActionAdd    = "ADD"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// Publisher pushes an event to the coach's live connections.
type Publisher interface {
	Publish(coachId uint, messageType, action string, data interface{})
}

type ControllerOptions struct {
	ORM            *gorm.DB
	Messages       *textgen.MessageWriter
	Mailer         core.Mailer
	Publisher      Publisher
	ThresholdDays  int
	UploadPath     string
	MaxUploadBytes int64
}

// ClientController struct
type ClientController struct {
	core.Controller
	ormDB          *gorm.DB
	messages       *textgen.MessageWriter
	mailer         core.Mailer
	publisher      Publisher
	thresholdDays  int
	uploadPath     string
	maxUploadBytes int64
	now            func() time.Time
}

// NewClientController instance
func NewClientController(base core.Controller, opts ControllerOptions) *ClientController {
	if opts.ThresholdDays <= 0 {
		opts.ThresholdDays = core.DefaultAtRiskThresholdDays
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	return &ClientController{
		Controller:     base,
		ormDB:          opts.ORM,
		messages:       opts.Messages,
		mailer:         opts.Mailer,
		publisher:      opts.Publisher,
		thresholdDays:  opts.ThresholdDays,
		uploadPath:     opts.UploadPath,
		maxUploadBytes: opts.MaxUploadBytes,
		now:            time.Now,
	}
}

func (c *ClientController) publish(coachId uint, messageType, action string, data interface{}) {
	if c.publisher != nil {
		c.publisher.Publish(coachId, messageType, action, data)
	}
}

// loadClient resolves the {clientId} path variable for the coach and
// answers 404 itself when the client is not the coach's.
func (c *ClientController) loadClient(w http.ResponseWriter, r *http.Request, coach *core.Coach) (*Client, bool) {
	clientId, err := c.GetUintVar(r, "clientId")
	if c.HandleErrorWithStatus(err, w, http.StatusBadRequest) {
		return nil, false
	}
	client, err := LoadClient(c.ormDB, coach.ID, clientId)
	if errors.Is(err, ErrClientNotFound) {
		c.HandleErrorWithStatus(err, w, http.StatusNotFound)
		return nil, false
	}
	if c.HandleError(err, w) {
		return nil, false
	}
	return client, true
}

// getClients swagger:route GET /clients clients getClients
//
// retrieves the dashboard of the logged in coach
//
// produces:
// - application/json
// parameters:
//	+ name: status
//    in: query
//    description: on_track or at_risk
//    required: false
//    type: string
// Responses:
//    default: HandleErrorData
//        200:
//	       data: []ClientView
//        401: HandleErrorData "unauthorized"
func (c *ClientController) GetClientsHandler(w http.ResponseWriter, r *http.Request) {
	ok, coach := c.GetCoach(w, r)
	if !ok {
		return
	}

	clients := Clients{}
	err := c.ormDB.
		Preload("CheckIns", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC, id DESC") }).
		Where("coach_id = ?", coach.ID).
		Order("name").
		Find(&clients).Error
	if c.HandleError(err, w) {
		return
	}

	now := c.now()
	status := r.URL.Query().Get("status")
	views := make([]ClientView, 0, len(clients))
	for i := range clients {
		view := clients[i].View(now, c.thresholdDays)
		view.RecentCheckIns = nil
		if status != "" && view.Status != status {
			continue
		}
		views = append(views, view)
	}
	// at-risk clients first, longest silence first
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].IsAtRisk != views[j].IsAtRisk {
			return views[i].IsAtRisk
		}
		return views[i].IsAtRisk && views[i].DaysSinceCheckin > views[j].DaysSinceCheckin
	})

	paging := c.GetPaging(r.URL.Query())
	paging.Finish(len(views))
	start := paging.Offset
	if start < 0 {
		start = 0
	}
	if start > len(views) {
		start = len(views)
	}
	end := len(views)
	if paging.Limit > 0 && start+paging.Limit < end {
		end = start + paging.Limit
	}
	c.SendJSONPaging(w, paging, views[start:end], http.StatusOK)
}

func (c *ClientController) GetClientHandler(w http.ResponseWriter, r *http.Request) {
	ok, coach := c.GetCoach(w, r)
	if !ok {
		return
	}
	client, ok := c.loadClient(w, r, coach)
	if !ok {
		return
	}
	c.SendJSON(w, client.View(c.now(), c.thresholdDays), http.StatusOK)
}

func (c *ClientController) CreateClientHandler(w http.ResponseWriter, r *http.Request) {
	ok, coach := c.GetCoach(w, r)
	if !ok {
		return
	}
	input := ClientInput{}
	if err := c.GetContent(&input, r); err != nil {
		c.HandleErrorWithStatus(err, w, http.StatusBadRequest)
		return
	}

	client := &Client{CoachId: coach.ID}
	client.Apply(input)
	if !client.Validate() {
		c.SendErrors(w, client.Errors, http.StatusBadRequest)
		return
	}
	if c.HandleError(c.ormDB.Create(client).Error, w) {
		return
	}

	view := client.View(c.now(), c.thresholdDays)
	c.publish(coach.ID, EventClient, ActionAdd, view)
	c.SendJSON(w, view, http.StatusCreated)
}

func (c *ClientController) UpdateClientHandler(w http.ResponseWriter, r *http.Request) {
	ok, coach := c.GetCoach(w, r)
	if !ok {
		return
	}
	client, ok := c.loadClient(w, r, coach)
	if !ok {
		return
	}
	input := ClientInput{}
	if err := c.GetContent(&input, r); err != nil {
		c.HandleErrorWithStatus(err, w, http.StatusBadRequest)
		return
	}

	client.Apply(input)
	c.saveClient(w, coach, client)
}

// setGoal swagger:route PUT /clients/{clientId}/goal clients setGoal
//
// sets or clears the goal weight of a client
//
// Responses:
//        200:
//	       data: ClientView
func (c *ClientController) SetGoalHandler(w http.ResponseWriter, r *http.Request) {
	ok, coach := c.GetCoach(w, r)
	if !ok {
		return
	}
	client, ok := c.loadClient(w, r, coach)
	if !ok {
		return
	}
	input := GoalInput{}
	if err := c.GetContent(&input, r); err != nil {
		c.HandleErrorWithStatus(err, w, http.StatusBadRequest)
		return
	}

	client.GoalWeight = input.GoalWeight
	c.saveClient(w, coach, client)
}

func (c *ClientController) saveClient(w http.ResponseWriter, coach *core.Coach, client *Client) {
	if !client.Validate() {
		c.SendErrors(w, client.Errors, http.StatusBadRequest)
		return
	}
	err := c.ormDB.Set("gorm:save_associations", false).Model(client).Updates(map[string]interface{}{
		"name":        client.Name,
		"email":       client.Email,
		"goal_weight": client.GoalWeight,
		"notes":       client.Notes,
	}).Error
	if c.HandleError(err, w) {
		return
	}

	view := client.View(c.now(), c.thresholdDays)
	c.publish(coach.ID, EventClient, ActionUpdate, view)
	c.SendJSON(w, view, http.StatusOK)
}

func (c *ClientController) DeleteClientHandler(w http.ResponseWriter, r *http.Request) {
	ok, coach := c.GetCoach(w, r)
	if !ok {
		return
	}
	client, ok := c.loadClient(w, r, coach)
	if !ok {
		return
	}

	photos, err := DeleteClient(c.ormDB, client)
	if c.HandleError(err, w) {
		return
	}
	for _, photo := range photos {
		if err := os.Remove(photo); err != nil && !os.IsNotExist(err) {
			c.Log().Warn("removing check-in photo", "path", photo, "err", err)
		}
	}

	c.publish(coach.ID, EventClient, ActionDelete, map[string]uint{"id": client.ID})
	c.SendJSON(w, map[string]uint{"id": client.ID}, http.StatusOK)
}
