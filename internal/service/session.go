package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/infrastructure/traininglog"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// SessionService owns the active workout session: the superset of active
// exercises, their set lists and notes, write-through persistence and the
// dispatch of completed/edited sets to the remote log. All mutations
// serialize behind one mutex, which is what makes the order counter values
// handed out during completion distinct across concurrent exercises.
type SessionService struct {
	mu        sync.Mutex
	snapshots domain.SnapshotRepository
	identity  *IdentityService
	sync      *SyncCoordinator
	logClient traininglog.Client
	rest      *RestTimer

	bodyWeight  float64
	snapshotTTL time.Duration
	now         func() time.Time

	session       *domain.WorkoutSession
	historyFlight singleflight.Group
}

// NewSessionService creates a new session service
func NewSessionService(
	snapshots domain.SnapshotRepository,
	identity *IdentityService,
	syncCoordinator *SyncCoordinator,
	logClient traininglog.Client,
	bodyWeight float64,
	snapshotTTL time.Duration,
) *SessionService {
	return &SessionService{
		snapshots:   snapshots,
		identity:    identity,
		sync:        syncCoordinator,
		logClient:   logClient,
		rest:        NewRestTimer(),
		bodyWeight:  bodyWeight,
		snapshotTTL: snapshotTTL,
		now:         time.Now,
	}
}

// RestTimer exposes the between-set stopwatch for rendering
func (s *SessionService) RestTimer() *RestTimer {
	return s.rest
}

// Restore loads a previously persisted session snapshot. Malformed
// snapshots never reach here (the repository discards them); stale ones
// (older than the cutoff, or with no active exercises) are dropped and the
// screen starts empty.
func (s *SessionService) Restore(ctx context.Context) error {
	snapshot, err := s.snapshots.Load(ctx)
	if err != nil {
		return err
	}
	if snapshot == nil {
		return nil
	}

	if len(snapshot.ActiveExerciseIDs) == 0 || s.now().Sub(snapshot.UpdatedAt) > s.snapshotTTL {
		logrus.WithField("group_id", snapshot.GroupID).Info("discarding stale session snapshot")
		return s.snapshots.Clear(ctx)
	}

	s.mu.Lock()
	s.session = snapshot
	s.mu.Unlock()
	logrus.WithFields(logrus.Fields{
		"group_id":  snapshot.GroupID,
		"exercises": len(snapshot.ActiveExerciseIDs),
	}).Info("restored workout session")
	return nil
}

// Session returns a deep copy of the current session for rendering, or nil
// when no workout is active.
func (s *SessionService) Session() *domain.WorkoutSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	return s.session.Clone()
}

// ensureSession lazily creates the workout session for this screen. The
// group id is generated once and stays stable for the screen's lifetime.
func (s *SessionService) ensureSession() *domain.WorkoutSession {
	if s.session == nil {
		s.session = &domain.WorkoutSession{
			GroupID:   generateULID(),
			Exercises: make(map[string]*domain.ExerciseSession),
		}
	}
	return s.session
}

// persist writes the session through to durable storage. Local writes are
// cheap; a failure is logged and the in-memory state stays authoritative.
func (s *SessionService) persist(ctx context.Context) {
	if s.session == nil {
		return
	}
	s.session.UpdatedAt = s.now()
	if err := s.snapshots.Save(ctx, s.session); err != nil {
		logrus.WithError(err).Warn("failed to persist session snapshot")
	}
}

// ActivateExercise appends an exercise to the active superset (idempotent)
// and kicks off the asynchronous history load that seeds its initial rows.
func (s *SessionService) ActivateExercise(ctx context.Context, exercise domain.Exercise) *domain.ExerciseSession {
	s.mu.Lock()
	session := s.ensureSession()

	ex, active := session.Exercises[exercise.ID]
	if !active {
		ex = &domain.ExerciseSession{
			Exercise: exercise,
			Sets:     []*domain.WorkoutSet{{ID: generateULID()}},
		}
		session.Exercises[exercise.ID] = ex
		session.ActiveExerciseIDs = append(session.ActiveExerciseIDs, exercise.ID)
		s.persist(ctx)
	}
	result := ex.Clone()
	loaded := ex.HistoryLoaded
	s.mu.Unlock()

	if !loaded {
		go s.loadHistory(exercise.ID)
	}
	return result
}

// loadHistory fetches history and note for one exercise. Concurrent loads
// for the same exercise collapse into one request.
func (s *SessionService) loadHistory(exerciseID string) {
	_, err, _ := s.historyFlight.Do(exerciseID, func() (interface{}, error) {
		resp, err := s.logClient.FetchExerciseHistory(context.Background(), exerciseID)
		if err != nil {
			return nil, err
		}
		s.applyHistory(exerciseID, resp)
		return nil, nil
	})
	if err != nil {
		logrus.WithError(err).WithField("exercise_id", exerciseID).Warn("history load failed")
	}
}

// applyHistory merges a finished history load into the session. If the user
// already has in-progress rows (typed data or restored state), only the
// cached history is refreshed and an empty note backfilled; in-progress
// entries are never overwritten. A truly fresh exercise gets its rows
// seeded from the most recent prior group.
func (s *SessionService) applyHistory(exerciseID string, resp *traininglog.HistoryResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return
	}
	ex, ok := s.session.Exercises[exerciseID]
	if !ok {
		return
	}

	ex.History = resp.History
	ex.HistoryLoaded = true
	if ex.Note == "" {
		ex.Note = resp.Note
	}

	if !exerciseHasUserData(ex) {
		if seeded := s.seedFromHistory(ex, resp.History); len(seeded) > 0 {
			ex.Sets = seeded
		}
	}

	s.persist(context.Background())
}

// exerciseHasUserData reports whether any row holds user-entered state
func exerciseHasUserData(ex *domain.ExerciseSession) bool {
	for _, set := range ex.Sets {
		if set.Completed || set.Weight != "" || set.Reps != "" || set.Rest != "" {
			return true
		}
	}
	return false
}

// seedFromHistory replays the most recent prior group for this exercise as
// pre-filled draft rows, storing the prior load as each row's delta
// baseline. For a superset group only this exercise's rows are used.
func (s *SessionService) seedFromHistory(ex *domain.ExerciseSession, history []domain.HistoryGroup) []*domain.WorkoutSet {
	for _, group := range history {
		records := group.SetsFor(ex.Exercise.ID)
		if len(records) == 0 {
			continue
		}
		sets := make([]*domain.WorkoutSet, 0, len(records))
		for _, rec := range records {
			baseline := rec.Weight
			input := ex.Exercise.InputWeight(rec.Weight, s.bodyWeight)
			sets = append(sets, &domain.WorkoutSet{
				ID:             generateULID(),
				Weight:         domain.FormatWeight(input),
				Reps:           strconv.Itoa(rec.Reps),
				Rest:           domain.FormatWeight(rec.Rest),
				BaselineWeight: &baseline,
			})
		}
		return sets
	}
	return nil
}

func (s *SessionService) findSet(exerciseID, setID string) (*domain.ExerciseSession, *domain.WorkoutSet, error) {
	if s.session == nil {
		return nil, nil, domain.ErrNoSession
	}
	ex, ok := s.session.Exercises[exerciseID]
	if !ok {
		return nil, nil, domain.ErrExerciseNotActive
	}
	for _, set := range ex.Sets {
		if set.ID == setID {
			return ex, set, nil
		}
	}
	return nil, nil, domain.ErrSetNotFound
}

// AddSet appends a new draft row, pre-filled from the preceding row to speed
// consecutive same-load sets.
func (s *SessionService) AddSet(ctx context.Context, exerciseID string) (*domain.WorkoutSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, domain.ErrNoSession
	}
	ex, ok := s.session.Exercises[exerciseID]
	if !ok {
		return nil, domain.ErrExerciseNotActive
	}

	set := &domain.WorkoutSet{ID: generateULID()}
	if len(ex.Sets) > 0 {
		prev := ex.Sets[len(ex.Sets)-1]
		set.Weight = prev.Weight
		set.Reps = prev.Reps
		set.Rest = prev.Rest
	}
	ex.Sets = append(ex.Sets, set)
	s.persist(ctx)
	return set.Clone(), nil
}

// DeleteSet removes a draft row. Completed rows expose edit instead of
// delete. Deleting the last remaining row synthesizes a fresh empty draft so
// the list never goes empty.
func (s *SessionService) DeleteSet(ctx context.Context, exerciseID, setID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ex, set, err := s.findSet(exerciseID, setID)
	if err != nil {
		return err
	}
	if set.Completed {
		return domain.ErrSetCompleted
	}

	kept := ex.Sets[:0]
	for _, candidate := range ex.Sets {
		if candidate.ID != setID {
			kept = append(kept, candidate)
		}
	}
	ex.Sets = kept
	if len(ex.Sets) == 0 {
		ex.Sets = append(ex.Sets, &domain.WorkoutSet{ID: generateULID()})
	}
	s.persist(ctx)
	return nil
}

// SetFieldPatch carries the field changes of one edit. Nil means untouched.
type SetFieldPatch struct {
	Weight *string `json:"weight,omitempty"`
	Reps   *string `json:"reps,omitempty"`
	Rest   *string `json:"rest,omitempty"`
}

func (p SetFieldPatch) apply(set *domain.WorkoutSet) {
	if p.Weight != nil {
		set.Weight = *p.Weight
	}
	if p.Reps != nil {
		set.Reps = *p.Reps
	}
	if p.Rest != nil {
		set.Rest = *p.Rest
	}
}

// UpdateSetFields applies a field edit. Draft rows just take the values.
// A completed row must be in editing mode; its edit (re)arms the debounce
// timer, and the sync payload is built when the timer fires so the last edit
// wins. On confirmed sync the editing flag clears; on failure it stays set
// so the user can retry by editing again.
func (s *SessionService) UpdateSetFields(ctx context.Context, exerciseID, setID string, patch SetFieldPatch) (*domain.WorkoutSet, error) {
	s.mu.Lock()

	_, set, err := s.findSet(exerciseID, setID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if set.Completed && !set.Editing {
		s.mu.Unlock()
		return nil, domain.ErrSetNotEditing
	}

	patch.apply(set)
	s.persist(ctx)
	result := set.Clone()
	completed := set.Completed
	s.mu.Unlock()

	if completed {
		s.sync.ScheduleUpdate(exerciseID, setID, func() (traininglog.UpdateSetRequest, bool) {
			return s.buildUpdateRequest(exerciseID, setID)
		}, func() {
			s.clearEditing(exerciseID, setID)
		})
	}
	return result, nil
}

// buildUpdateRequest recomputes the effective weight from the set's current
// fields at debounce-fire time and picks the addressing key: the stored row
// reference when present, otherwise the (group id, order) pair.
func (s *SessionService) buildUpdateRequest(exerciseID, setID string) (traininglog.UpdateSetRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ex, set, err := s.findSet(exerciseID, setID)
	if err != nil {
		// The set was discarded before the timer fired; drop the update.
		return traininglog.UpdateSetRequest{}, false
	}

	effective, ok := ex.Exercise.EffectiveWeight(set.Weight, s.bodyWeight)
	if !ok {
		return traininglog.UpdateSetRequest{}, false
	}
	set.EffectiveWeight = &effective

	req := traininglog.UpdateSetRequest{
		EffectiveWeight: effective,
		InputWeight:     set.Weight,
		Reps:            set.Reps,
		Rest:            set.Rest,
	}
	if set.RowReference != "" {
		req.RowReference = set.RowReference
	} else {
		req.GroupID = set.GroupID
		req.Order = set.Order
	}
	return req, true
}

func (s *SessionService) clearEditing(exerciseID, setID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, set, err := s.findSet(exerciseID, setID); err == nil {
		set.Editing = false
		s.persist(context.Background())
	}
}

// CompleteSet transitions a draft to completed: validates both fields,
// computes the effective weight, consumes the next global order, stamps the
// session group id, restarts the rest stopwatch and dispatches the
// asynchronous save. The completion is optimistic: a failed save surfaces a
// signal but is never rolled back.
func (s *SessionService) CompleteSet(ctx context.Context, exerciseID, setID string) (*domain.WorkoutSet, error) {
	s.mu.Lock()

	ex, set, err := s.findSet(exerciseID, setID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if set.Completed {
		result := set.Clone()
		s.mu.Unlock()
		return result, nil
	}

	if strings.TrimSpace(set.Weight) == "" || strings.TrimSpace(set.Reps) == "" {
		s.mu.Unlock()
		return nil, domain.ErrValidation
	}
	effective, ok := ex.Exercise.EffectiveWeight(set.Weight, s.bodyWeight)
	if !ok {
		s.mu.Unlock()
		return nil, domain.ErrValidation
	}

	order, _, err := s.identity.NextOrder(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	set.Completed = true
	set.Editing = false
	set.EffectiveWeight = &effective
	set.Order = order
	set.GroupID = s.session.GroupID

	s.rest.Restart()
	s.persist(ctx)

	req := traininglog.SaveSetRequest{
		ExerciseID:      exerciseID,
		EffectiveWeight: effective,
		InputWeight:     set.Weight,
		Reps:            set.Reps,
		Rest:            set.Rest,
		Note:            ex.Note,
		GroupID:         set.GroupID,
		Order:           set.Order,
	}
	result := set.Clone()
	s.mu.Unlock()

	go s.sync.SaveSet(context.Background(), exerciseID, setID, req, func(rowReference string) {
		if rowReference == "" {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, saved, err := s.findSet(exerciseID, setID); err == nil {
			saved.RowReference = rowReference
			s.persist(context.Background())
		}
	})

	return result, nil
}

// BeginEdit re-opens a completed row for field editing
func (s *SessionService) BeginEdit(ctx context.Context, exerciseID, setID string) (*domain.WorkoutSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, set, err := s.findSet(exerciseID, setID)
	if err != nil {
		return nil, err
	}
	if !set.Completed {
		return nil, domain.ErrSetNotCompleted
	}
	set.Editing = true
	s.persist(ctx)
	return set.Clone(), nil
}

// SetNote replaces the exercise's free-text note
func (s *SessionService) SetNote(ctx context.Context, exerciseID, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return domain.ErrNoSession
	}
	ex, ok := s.session.Exercises[exerciseID]
	if !ok {
		return domain.ErrExerciseNotActive
	}
	ex.Note = note
	s.persist(ctx)
	return nil
}

// Finish tears the workout screen down: pending edit syncs are dropped
// without flushing, the persisted snapshot is cleared and the superset
// emptied.
func (s *SessionService) Finish(ctx context.Context) error {
	s.sync.CancelAll()
	s.rest.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	if err := s.snapshots.Clear(ctx); err != nil {
		return err
	}
	logrus.Info("workout finished, session cleared")
	return nil
}
