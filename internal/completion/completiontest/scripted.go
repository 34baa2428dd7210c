// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package completiontest provides a deterministic completion.Client for
// tests.
package completiontest

import (
	"context"
	"sync"

	"github.com/jeranaias/gpterm/internal/completion"
)

// Reply scripts one call to Complete.
type Reply struct {
	// Fragments are delivered in order.
	Fragments []completion.Fragment
	// Err is returned before any fragment when FailAfter is negative, or
	// after FailAfter fragments otherwise.
	Err       error
	FailAfter int
	// WaitForCancel blocks after the fragments until ctx is done and then
	// returns ctx.Err().
	WaitForCancel bool
}

// Texts builds a Reply of present fragments.
func Texts(parts ...string) Reply {
	frags := make([]completion.Fragment, len(parts))
	for i, p := range parts {
		frags[i] = completion.Text(p)
	}
	return Reply{Fragments: frags}
}

// Failure builds a Reply that fails before delivering anything.
func Failure(err error) Reply {
	return Reply{Err: err, FailAfter: -1}
}

// Scripted replays Replies in order, one per Complete call, and records
// every request it receives. Once the script runs out it answers with an
// empty stream.
type Scripted struct {
	mu       sync.Mutex
	replies  []Reply
	requests []completion.Request

	// Delivered, when set, runs after each fragment is handed to the
	// callback. Tests use it to act mid-stream.
	Delivered func(i int)
}

// New returns a Scripted client.
func New(replies ...Reply) *Scripted {
	return &Scripted{replies: replies}
}

// Complete implements completion.Client.
func (s *Scripted) Complete(ctx context.Context, req completion.Request, fn completion.FragmentFunc) error {
	s.mu.Lock()
	req.Messages = append([]completion.Message(nil), req.Messages...)
	s.requests = append(s.requests, req)
	var reply Reply
	if len(s.replies) > 0 {
		reply = s.replies[0]
		s.replies = s.replies[1:]
	}
	delivered := s.Delivered
	s.mu.Unlock()

	if reply.Err != nil && reply.FailAfter < 0 {
		return reply.Err
	}

	for i, frag := range reply.Fragments {
		if reply.Err != nil && i == reply.FailAfter {
			return reply.Err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(frag); err != nil {
			return err
		}
		if delivered != nil {
			delivered(i)
		}
	}
	if reply.Err != nil {
		return reply.Err
	}

	if reply.WaitForCancel {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

// Requests returns copies of every request seen so far.
func (s *Scripted) Requests() []completion.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]completion.Request(nil), s.requests...)
}

// LastRequest returns the most recent request, or the zero Request.
func (s *Scripted) LastRequest() completion.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return completion.Request{}
	}
	return s.requests[len(s.requests)-1]
}
