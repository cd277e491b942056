// Package memory provides an in-memory surface implementation used by tests
// and local development wiring. It records every published message and its
// lifecycle so behavior can be asserted without a chat platform.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/louisbranch/muster/internal/id"
	"github.com/louisbranch/muster/internal/surface"
)

// Message is one published message and its current state.
type Message struct {
	Handle    surface.Handle
	Target    string
	Content   surface.Content
	Retracted bool
	Updates   int
}

// Surface is an in-memory surface.Surface.
type Surface struct {
	mu       sync.Mutex
	messages map[surface.Handle]*Message
	order    []surface.Handle

	// PublishErr, when set, makes the next Publish fail. Used to exercise
	// transport-failure paths.
	PublishErr error
}

// New creates an empty in-memory surface.
func New() *Surface {
	return &Surface{messages: make(map[surface.Handle]*Message)}
}

// Publish records a message and returns a fresh handle.
func (s *Surface) Publish(ctx context.Context, target string, content surface.Content) (surface.Handle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PublishErr != nil {
		err := s.PublishErr
		s.PublishErr = nil
		return "", err
	}
	value, err := id.NewID()
	if err != nil {
		return "", fmt.Errorf("generate handle: %w", err)
	}
	handle := surface.Handle(value)
	s.messages[handle] = &Message{Handle: handle, Target: target, Content: content}
	s.order = append(s.order, handle)
	return handle, nil
}

// Update replaces the content of a live message.
func (s *Surface) Update(ctx context.Context, handle surface.Handle, content surface.Content) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[handle]
	if !ok || msg.Retracted {
		return fmt.Errorf("unknown surface handle %q", handle)
	}
	msg.Content = content
	msg.Updates++
	return nil
}

// Retract marks a message as retracted. Unknown or already-retracted
// handles are a no-op.
func (s *Surface) Retract(ctx context.Context, handle surface.Handle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg, ok := s.messages[handle]; ok {
		msg.Retracted = true
	}
	return nil
}

// Live returns the not-yet-retracted messages in publish order.
func (s *Surface) Live() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Message
	for _, handle := range s.order {
		if msg := s.messages[handle]; !msg.Retracted {
			out = append(out, *msg)
		}
	}
	return out
}

// Get returns the message for a handle, if it was ever published.
func (s *Surface) Get(handle surface.Handle) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages[handle]
	if !ok {
		return Message{}, false
	}
	return *msg, true
}
