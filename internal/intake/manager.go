package intake

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mimosaworkshops/testimonial-api/internal/testimonial"
	"go.uber.org/zap"
)

// ErrSessionNotFound signals a lookup for a session identifier the manager
// does not hold.
var ErrSessionNotFound = errors.New("intake: session not found")

// ManagerConfig describes the dependencies required to construct a Manager.
type ManagerConfig struct {
	Store      Recorder
	Generator  Generator
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Manager tracks in-progress intake sessions keyed by the draft's entry
// identifier. Sessions live in memory only: an abandoned draft is gone after
// a restart, which matches the single-device unsynchronized contract.
type Manager struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	store      Recorder
	generator  Generator
	clock      func() time.Time
	idProvider IDProvider
	logger     *zap.Logger
}

// NewManager constructs a session manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("intake: %w", errMissingStore)
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("intake: %w", errMissingGenerator)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	idProvider := cfg.IDProvider
	if idProvider == nil {
		idProvider = NewUUIDProvider()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions:   make(map[string]*Session),
		store:      cfg.Store,
		generator:  cfg.Generator,
		clock:      clock,
		idProvider: idProvider,
		logger:     logger,
	}, nil
}

// Begin starts a fresh intake session and returns it with its identifier.
func (m *Manager) Begin() (string, *Session, error) {
	id, err := m.idProvider.NewID()
	if err != nil {
		return "", nil, fmt.Errorf("intake: issue draft id: %w", err)
	}
	session, err := m.register(id, NewDraft(id, m.clock()))
	if err != nil {
		return "", nil, err
	}
	return id, session, nil
}

// Reopen starts an intake session seeded from a stored entry so it can be
// edited and regenerated. A prior session for the same entry is discarded.
func (m *Manager) Reopen(entry testimonial.Entry) (string, *Session, error) {
	session, err := m.register(entry.ID, DraftFromEntry(entry))
	if err != nil {
		return "", nil, err
	}
	return entry.ID, session, nil
}

// Get returns the session with the given identifier or ErrSessionNotFound.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// Release drops the session with the given identifier. Releasing an unknown
// identifier is a no-op.
func (m *Manager) Release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Manager) register(id string, draft Draft) (*Session, error) {
	session, err := NewSession(SessionConfig{
		Store:     m.store,
		Generator: m.generator,
		Logger:    m.logger,
	}, draft)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = session
	return session, nil
}
