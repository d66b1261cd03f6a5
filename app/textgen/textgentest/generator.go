// Package textgentest provides a scripted textgen.Generator for tests.
package textgentest

import (
	"context"
	"errors"
	"sync"

	"github.com/bkabbarah/coachkit/app/textgen"
)

// Generator replays Responses in order and records every request.
// Once the responses are used up the last one is repeated.
type Generator struct {
	Responses []string
	Err       error

	mu       sync.Mutex
	requests []textgen.Request
}

func New(responses ...string) *Generator {
	return &Generator{Responses: responses}
}

func Failing(err error) *Generator {
	return &Generator{Err: err}
}

func (g *Generator) Generate(_ context.Context, req textgen.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.requests = append(g.requests, req)
	if g.Err != nil {
		return "", g.Err
	}
	if len(g.Responses) == 0 {
		return "", errors.New("textgentest: no scripted response")
	}
	idx := len(g.requests) - 1
	if idx >= len(g.Responses) {
		idx = len(g.Responses) - 1
	}
	return g.Responses[idx], nil
}

func (g *Generator) Requests() []textgen.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]textgen.Request, len(g.requests))
	copy(out, g.requests)
	return out
}

func (g *Generator) CallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}
