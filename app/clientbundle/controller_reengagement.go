package clientbundle

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bkabbarah/coachkit/app/core"
	"github.com/bkabbarah/coachkit/app/textgen"
)

const defaultReengagementSubject = "Checking in"

// ReengagementDraft is a generated message the coach can edit and send.
// swagger:model
type ReengagementDraft struct {
	ClientId     uint   `json:"client_id"`
	DaysInactive int    `json:"days_inactive"`
	Message      string `json:"message"`
}

type ReengagementSend struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ReengagementInput collects what the message writer needs about a client.
func (c *Client) ReengagementInput(daysInactive int) textgen.ReengagementInput {
	in := textgen.ReengagementInput{
		ClientName:   c.Name,
		DaysInactive: daysInactive,
	}
	if c.Notes != nil {
		in.Notes = *c.Notes
	}
	for i, checkIn := range c.CheckIns {
		if i == textgen.MaxRecentCheckIns {
			break
		}
		in.RecentCheckIns = append(in.RecentCheckIns, textgen.CheckInSummary{
			Date:   checkIn.CreatedAt,
			Note:   checkIn.Note,
			Weight: checkIn.Weight,
		})
	}
	return in
}

func (c *ClientController) GenerateReengagementHandler(w http.ResponseWriter, r *http.Request) {
	ok, coach := c.GetCoach(w, r)
	if !ok {
		return
	}
	client, ok := c.loadClient(w, r, coach)
	if !ok {
		return
	}
	if c.messages == nil {
		c.HandleErrorWithStatus(textgen.ErrNotConfigured, w, http.StatusServiceUnavailable)
		return
	}

	days := client.DaysSinceCheckin(c.now())
	message, err := c.messages.Reengagement(r.Context(), client.ReengagementInput(days))
	if errors.Is(err, textgen.ErrNotConfigured) {
		c.HandleErrorWithStatus(err, w, http.StatusServiceUnavailable)
		return
	}
	if c.HandleErrorWithStatus(err, w, http.StatusBadGateway) {
		return
	}

	c.SendJSON(w, ReengagementDraft{ClientId: client.ID, DaysInactive: days, Message: message}, http.StatusOK)
}

// sendReengagement swagger:route POST /clients/{clientId}/reengagement/send clients sendReengagement
//
// mails a (possibly edited) re-engagement message to the client
//
// Responses:
//        200: ResponseData
//        400: HandleErrorData "client has no email or message is empty"
//        503: HandleErrorData "mail server is not configured"
func (c *ClientController) SendReengagementHandler(w http.ResponseWriter, r *http.Request) {
	ok, coach := c.GetCoach(w, r)
	if !ok {
		return
	}
	client, ok := c.loadClient(w, r, coach)
	if !ok {
		return
	}
	input := ReengagementSend{}
	if err := c.GetContent(&input, r); err != nil {
		c.HandleErrorWithStatus(err, w, http.StatusBadRequest)
		return
	}

	errs := map[string]string{}
	if client.Email == nil || *client.Email == "" {
		errs["email"] = "Client has no email address"
	}
	input.Message = strings.TrimSpace(input.Message)
	if input.Message == "" {
		errs["message"] = "Message is required"
	}
	if len(errs) > 0 {
		c.SendErrors(w, errs, http.StatusBadRequest)
		return
	}
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		subject = defaultReengagementSubject
	}

	if c.mailer == nil {
		c.HandleErrorWithStatus(core.ErrMailNotConfigured, w, http.StatusServiceUnavailable)
		return
	}
	err := c.mailer.SendMail([]string{*client.Email}, subject, input.Message)
	if errors.Is(err, core.ErrMailNotConfigured) {
		c.HandleErrorWithStatus(err, w, http.StatusServiceUnavailable)
		return
	}
	if c.HandleErrorWithStatus(err, w, http.StatusBadGateway) {
		return
	}

	c.Log().Info("re-engagement message sent", "coach", coach.ID, "client", client.ID)
	c.SendJSON(w, map[string]bool{"sent": true}, http.StatusOK)
}
