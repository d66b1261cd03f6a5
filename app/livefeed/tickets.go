package livefeed

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// TicketTTL is how long a websocket ticket may wait before it is redeemed.
const TicketTTL = 30 * time.Second

type ticket struct {
	coachId   uint
	expiresAt time.Time
}

// Tickets hands out single-use tokens so browsers can open the websocket
// without sending their session token in the URL.
type Tickets struct {
	mu      sync.Mutex
	tickets map[string]ticket
	now     func() time.Time
}

func NewTickets() *Tickets {
	return &Tickets{
		tickets: make(map[string]ticket),
		now:     time.Now,
	}
}

func (t *Tickets) Issue(coachId uint) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for key, tk := range t.tickets {
		if !now.Before(tk.expiresAt) {
			delete(t.tickets, key)
		}
	}
	key := uuid.NewString()
	t.tickets[key] = ticket{coachId: coachId, expiresAt: now.Add(TicketTTL)}
	return key
}

// Redeem consumes the ticket and returns its coach.
func (t *Tickets) Redeem(key string) (uint, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tk, ok := t.tickets[key]
	if !ok {
		return 0, false
	}
	delete(t.tickets, key)
	if !t.now().Before(tk.expiresAt) {
		return 0, false
	}
	return tk.coachId, true
}
