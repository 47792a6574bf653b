// Package tashkeeltest provides a scriptable backend for tests.
package tashkeeltest

import (
	"context"
	"strings"
	"sync"

	"github.com/kbukum/tashkeel/arabic"
)

// Backend is a test double for a model-backed diacritization backend.
// Zero-valued hooks fall back to an available backend that puts a fatha
// after every Arabic letter.
type Backend struct {
	BackendName string
	Model       string
	Unavailable bool

	// InitErrs are returned by successive Init calls; once exhausted Init
	// succeeds.
	InitErrs []error
	CloseErr error
	// Fn replaces the default diacritization.
	Fn func(ctx context.Context, text string) (string, error)

	mu     sync.Mutex
	calls  []string
	inits  int
	closes int
}

// New returns an available backend named name.
func New(name string) *Backend {
	return &Backend{BackendName: name, Model: name + "-model"}
}

func (b *Backend) Name() string { return b.BackendName }

func (b *Backend) ModelName() string { return b.Model }

func (b *Backend) IsAvailable(context.Context) bool { return !b.Unavailable }

func (b *Backend) Init(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inits++
	if b.inits <= len(b.InitErrs) {
		return b.InitErrs[b.inits-1]
	}
	return nil
}

func (b *Backend) Close(context.Context) error {
	b.mu.Lock()
	b.closes++
	b.mu.Unlock()
	return b.CloseErr
}

func (b *Backend) Diacritize(ctx context.Context, text string) (string, error) {
	b.mu.Lock()
	b.calls = append(b.calls, text)
	b.mu.Unlock()
	if b.Fn != nil {
		return b.Fn(ctx, text)
	}
	return MarkAll(text), nil
}

// Calls returns the inputs Diacritize received, in order.
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// Inits returns how many times Init ran.
func (b *Backend) Inits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inits
}

// Closes returns how many times Close ran.
func (b *Backend) Closes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closes
}

// MarkAll puts a fatha after every Arabic letter of text.
func MarkAll(text string) string {
	var sb strings.Builder
	for _, r := range text {
		sb.WriteRune(r)
		if arabic.IsLetter(r) {
			sb.WriteRune(arabic.Fatha)
		}
	}
	return sb.String()
}
