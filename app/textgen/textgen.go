// Package textgen talks to hosted text generation models.
package textgen

import (
	"context"
	"errors"
)

// Purposes label requests for metrics and logs.
const (
	PurposeColumnMapping = "column_mapping"
	PurposeReengagement  = "reengagement"
)

var ErrNotConfigured = errors.New("text generation is not configured")

// Request is a single-turn prompt.
type Request struct {
	Purpose   string
	System    string
	Prompt    string
	MaxTokens int
}

// Generator turns a prompt into free text.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Unconfigured fails every request with ErrNotConfigured.
var Unconfigured Generator = GeneratorFunc(func(context.Context, Request) (string, error) {
	return "", ErrNotConfigured
})
