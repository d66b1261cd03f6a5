package systembundle

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

func (c *SystemController) GetWSTicketHandler(w http.ResponseWriter, r *http.Request) {
	ok, coach := c.GetCoach(w, r)
	if !ok {
		return
	}
	c.SendJSON(w, TicketResponse{Ticket: c.tickets.Issue(coach.ID)}, http.StatusOK)
}

// HandleConnections opens the live feed for the coach the ticket was issued to.
func (c *SystemController) HandleConnections(w http.ResponseWriter, r *http.Request) {
	if c.hub == nil {
		c.HandleErrorWithStatus(errors.New("live feed disabled"), w, http.StatusServiceUnavailable)
		return
	}
	coachId, ok := c.tickets.Redeem(mux.Vars(r)["ticket"])
	if !ok {
		c.HandleUnauthorizedError(errors.New("Ticket invalid"), w)
		return
	}
	c.hub.Serve(w, r, coachId)
}
