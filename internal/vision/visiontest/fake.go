// Package visiontest provides a scripted VisionModel for tests.
package visiontest

import (
	"context"
	"sync"

	"homefix/internal/model"
)

// Fake returns queued replies in order and records every request. Once the
// queue is drained the last reply is repeated.
type Fake struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []model.CompletionRequest
}

func New(replies ...string) *Fake {
	return &Fake{replies: replies}
}

// Failing returns a fake whose every call fails with err.
func Failing(err error) *Fake {
	return &Fake{err: err}
}

func (f *Fake) Complete(_ context.Context, req model.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *Fake) Requests() []model.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.CompletionRequest(nil), f.requests...)
}
