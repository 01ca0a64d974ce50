package domain

import (
	"context"
	"time"
)

// ExerciseSession holds everything the workout screen tracks for one active
// exercise: the catalog snapshot, the user note, the set list and the cached
// history used for seeding and delta display.
type ExerciseSession struct {
	Exercise      Exercise       `json:"exercise"`
	Note          string         `json:"note"`
	Sets          []*WorkoutSet  `json:"sets"`
	History       []HistoryGroup `json:"history,omitempty"`
	HistoryLoaded bool           `json:"history_loaded"`
}

// Clone returns a deep copy of the exercise session.
func (e *ExerciseSession) Clone() *ExerciseSession {
	cp := *e
	cp.Sets = make([]*WorkoutSet, len(e.Sets))
	for i, s := range e.Sets {
		cp.Sets[i] = s.Clone()
	}
	cp.History = append([]HistoryGroup(nil), e.History...)
	return &cp
}

// WorkoutSession is the state of one workout screen: a group id stable for
// the screen's lifetime, the ordered superset of active exercises and their
// per-exercise data. Every set completed from any active exercise shares the
// group id so the remote log can reconstruct which sets belonged together.
type WorkoutSession struct {
	GroupID           string                      `json:"group_id"`
	ActiveExerciseIDs []string                    `json:"active_exercise_ids"`
	Exercises         map[string]*ExerciseSession `json:"exercises"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

// Clone returns a deep copy safe to hand out for rendering.
func (w *WorkoutSession) Clone() *WorkoutSession {
	cp := *w
	cp.ActiveExerciseIDs = append([]string(nil), w.ActiveExerciseIDs...)
	cp.Exercises = make(map[string]*ExerciseSession, len(w.Exercises))
	for id, ex := range w.Exercises {
		cp.Exercises[id] = ex.Clone()
	}
	return &cp
}

// SessionIdentity outlives any single workout screen. Its order counter is
// the sole source of the global order stamped onto completed sets: it never
// decreases while the identity is valid and resets to 0 only when the
// identity is rotated after an idle gap.
type SessionIdentity struct {
	SessionID    string    `json:"session_id"`
	OrderCounter int       `json:"order_counter"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// SnapshotRepository persists the workout session snapshot under a fixed key.
// Load returns (nil, nil) when no usable snapshot exists; a corrupt snapshot
// is discarded, never surfaced as an error.
type SnapshotRepository interface {
	Save(ctx context.Context, session *WorkoutSession) error
	Load(ctx context.Context) (*WorkoutSession, error)
	Clear(ctx context.Context) error
}

// IdentityRepository persists the session identity record under a fixed key.
// Load returns (nil, nil) when no record exists.
type IdentityRepository interface {
	Save(ctx context.Context, identity *SessionIdentity) error
	Load(ctx context.Context) (*SessionIdentity, error)
}
