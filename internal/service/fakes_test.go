package service

import (
	"context"
	"sync"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/infrastructure/traininglog"
)

type memSnapshotRepo struct {
	mu       sync.Mutex
	snapshot *domain.WorkoutSession
	saves    int
	clears   int
}

func (m *memSnapshotRepo) Save(_ context.Context, session *domain.WorkoutSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = session.Clone()
	m.saves++
	return nil
}

func (m *memSnapshotRepo) Load(_ context.Context) (*domain.WorkoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshot == nil {
		return nil, nil
	}
	return m.snapshot.Clone(), nil
}

func (m *memSnapshotRepo) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = nil
	m.clears++
	return nil
}

type memIdentityRepo struct {
	mu       sync.Mutex
	identity *domain.SessionIdentity
}

func (m *memIdentityRepo) Save(_ context.Context, identity *domain.SessionIdentity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *identity
	m.identity = &cp
	return nil
}

func (m *memIdentityRepo) Load(_ context.Context) (*domain.SessionIdentity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return nil, nil
	}
	cp := *m.identity
	return &cp, nil
}

type fakeLogClient struct {
	mu         sync.Mutex
	history    map[string]*traininglog.HistoryResponse
	historyErr error
	saveErr    error
	updateErr  error
	rowRef     string
	saves      []traininglog.SaveSetRequest
	updates    []traininglog.UpdateSetRequest
}

func (f *fakeLogClient) FetchExerciseHistory(_ context.Context, exerciseID string) (*traininglog.HistoryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	if resp, ok := f.history[exerciseID]; ok {
		return resp, nil
	}
	return &traininglog.HistoryResponse{}, nil
}

func (f *fakeLogClient) SaveSet(_ context.Context, req traininglog.SaveSetRequest) (*traininglog.SaveSetResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saves = append(f.saves, req)
	return &traininglog.SaveSetResponse{RowReference: f.rowRef}, nil
}

func (f *fakeLogClient) UpdateSet(_ context.Context, req traininglog.UpdateSetRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, req)
	return nil
}

func (f *fakeLogClient) savedRequests() []traininglog.SaveSetRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]traininglog.SaveSetRequest(nil), f.saves...)
}

func (f *fakeLogClient) updateRequests() []traininglog.UpdateSetRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]traininglog.UpdateSetRequest(nil), f.updates...)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []SyncEvent
}

func (r *recordingNotifier) Notify(event SyncEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingNotifier) recorded() []SyncEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SyncEvent(nil), r.events...)
}
