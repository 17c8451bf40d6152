// Package matrixtest provides an in-memory matrix.Client for tests.
package matrixtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/half-shot/matrix-poweredup/pkg/matrix"
)

// Sent is one recorded SendMessage call.
type Sent struct {
	RoomID    string
	EventType string
	Content   any
}

// Recorder records sent messages and replays queued events on Sync.
type Recorder struct {
	mu      sync.Mutex
	sent    []Sent
	joined  map[string]bool
	pending []*matrix.Event
	synced  bool

	// SendErr, when set, fails every SendMessage.
	SendErr error
}

var _ matrix.Client = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{joined: map[string]bool{}}
}

// Queue adds events delivered by the next Sync.
func (r *Recorder) Queue(evts ...*matrix.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, evts...)
}

// Sync delivers queued events, then blocks until ctx is done.
func (r *Recorder) Sync(ctx context.Context, handler matrix.EventHandler) error {
	r.mu.Lock()
	evts := r.pending
	r.pending = nil
	r.synced = true
	r.mu.Unlock()

	for _, evt := range evts {
		handler(ctx, evt)
	}
	<-ctx.Done()
	return nil
}

func (r *Recorder) EnsureJoined(_ context.Context, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joined[roomID] = true
	return nil
}

// FailSends sets SendErr while other goroutines may be sending. A nil err
// lets sends through again.
func (r *Recorder) FailSends(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SendErr = err
}

// Synced reports whether Sync has been called.
func (r *Recorder) Synced() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.synced
}

// Joined reports whether EnsureJoined was called for roomID.
func (r *Recorder) Joined(roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.joined[roomID]
}

func (r *Recorder) SendMessage(_ context.Context, roomID, eventType string, content any) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SendErr != nil {
		return "", r.SendErr
	}
	r.sent = append(r.sent, Sent{RoomID: roomID, EventType: eventType, Content: content})
	return fmt.Sprintf("$sent%d", len(r.sent)), nil
}

// Sent returns a copy of every recorded message.
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.sent...)
}
