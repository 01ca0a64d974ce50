package service

import (
	"context"
	"sync"
	"time"

	"github.com/mansoorceksport/liftlog/internal/infrastructure/traininglog"
	"github.com/sirupsen/logrus"
)

// SyncEvent types surfaced to the UI. There is no automatic retry and no
// durable queue behind these; they are notification signals only.
const (
	EventSaveFailed   = "save_failed"
	EventUpdateFailed = "update_failed"
)

// SyncEvent describes a failed remote mutation.
type SyncEvent struct {
	Type       string
	ExerciseID string
	SetID      string
	Err        error
}

// Notifier receives user-visible sync failure signals.
type Notifier interface {
	Notify(event SyncEvent)
}

// LogNotifier is the default notifier; it only logs.
type LogNotifier struct{}

func (LogNotifier) Notify(event SyncEvent) {
	logrus.WithFields(logrus.Fields{
		"event":       event.Type,
		"exercise_id": event.ExerciseID,
		"set_id":      event.SetID,
	}).WithError(event.Err).Warn("training log sync failed")
}

// SyncCoordinator wraps the two remote mutations the set lifecycle needs:
// save-on-complete and debounced update-on-edit. Edits to the same set
// within the debounce window coalesce last-write-wins: each schedule cancels
// and replaces the set's pending timer.
type SyncCoordinator struct {
	client   traininglog.Client
	notifier Notifier
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer // set id -> pending edit timer
}

// NewSyncCoordinator creates a new sync coordinator
func NewSyncCoordinator(client traininglog.Client, notifier Notifier, debounce time.Duration) *SyncCoordinator {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &SyncCoordinator{
		client:   client,
		notifier: notifier,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
	}
}

// SaveSet pushes a freshly completed set to the remote log. On success the
// returned row reference (possibly empty) is handed to onSaved; on failure
// only a signal is emitted and the completion is never rolled back.
func (s *SyncCoordinator) SaveSet(ctx context.Context, exerciseID, setID string, req traininglog.SaveSetRequest, onSaved func(rowReference string)) {
	resp, err := s.client.SaveSet(ctx, req)
	if err != nil {
		s.notifier.Notify(SyncEvent{Type: EventSaveFailed, ExerciseID: exerciseID, SetID: setID, Err: err})
		return
	}
	if onSaved != nil {
		onSaved(resp.RowReference)
	}
}

// ScheduleUpdate arms (or re-arms) the debounce timer for one set's edit.
// The request payload is built when the timer fires, so it carries the
// values of the last edit. onSynced runs only after a confirmed update; on
// failure the set stays in editing so the user can retry by editing again.
func (s *SyncCoordinator) ScheduleUpdate(exerciseID, setID string, build func() (traininglog.UpdateSetRequest, bool), onSynced func()) {
	s.mu.Lock()
	if t, ok := s.timers[setID]; ok {
		t.Stop()
	}
	s.timers[setID] = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		delete(s.timers, setID)
		s.mu.Unlock()

		req, ok := build()
		if !ok {
			return
		}
		if err := s.client.UpdateSet(context.Background(), req); err != nil {
			s.notifier.Notify(SyncEvent{Type: EventUpdateFailed, ExerciseID: exerciseID, SetID: setID, Err: err})
			return
		}
		if onSynced != nil {
			onSynced()
		}
	})
	s.mu.Unlock()
}

// CancelPending drops a set's pending update without flushing it
func (s *SyncCoordinator) CancelPending(setID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[setID]; ok {
		t.Stop()
		delete(s.timers, setID)
	}
}

// CancelAll drops every pending update without flushing (teardown)
func (s *SyncCoordinator) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}
