// Package store owns the application state and applies every mutation as a transition on a
// private copy that is committed only when it succeeds, then persisted.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/microgreens/internal/domain/models"
)

var (
	// ErrNotFound indicates the referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed or incomplete input.
	ErrValidation = errors.New("validation failed")
	// ErrBusinessRule indicates the request is well formed but not allowed in the current state.
	ErrBusinessRule = errors.New("operation not allowed")
)

// Repository persists the whole application snapshot.
type Repository interface {
	// Load returns the stored snapshot. found is false when nothing has been saved yet.
	Load(ctx context.Context) (data models.AppData, found bool, err error)
	Save(ctx context.Context, data models.AppData) error
}

// Store serialises writers behind one mutex. Persistence failures never roll back a
// committed transition; the last one is kept for PersistenceError.
type Store struct {
	mu         sync.RWMutex
	state      models.AppData
	repo       Repository
	logger     *zap.Logger
	loc        *time.Location
	now        func() time.Time
	newID      func(prefix string) string
	persistErr error
}

// Open loads the persisted snapshot through repo, falling back to the seeded defaults when
// nothing is stored or the read fails. repo may be nil for a purely in-memory store.
func Open(ctx context.Context, repo Repository, loc *time.Location, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	s := &Store{
		state:  models.DefaultAppData(),
		repo:   repo,
		logger: logger,
		loc:    loc,
		now:    func() time.Time { return time.Now().In(loc) },
		newID:  shortID,
	}
	if repo == nil {
		return s
	}

	data, found, err := repo.Load(ctx)
	switch {
	case err != nil:
		s.persistErr = fmt.Errorf("load snapshot: %w", err)
		logger.Error("failed to load application data, starting from defaults", zap.Error(err))
	case found:
		data.Normalize()
		s.state = data
		logger.Info("application data loaded",
			zap.Int("orders", len(data.Orders)),
			zap.Int("varieties", len(data.MicrogreenVarieties)),
		)
	default:
		logger.Info("no stored application data, using defaults")
	}
	return s
}

func shortID(prefix string) string {
	return prefix + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// Location is the timezone used for calendar days.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Now returns the store clock in the farm timezone.
func (s *Store) Now() time.Time {
	return s.now()
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() models.AppData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// PersistenceError reports the outcome of the last load or save; nil after a successful save.
func (s *Store) PersistenceError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistErr
}

// Replace overwrites the whole state, as done by a snapshot import.
func (s *Store) Replace(ctx context.Context, data models.AppData) error {
	if data.Orders == nil || data.MicrogreenVarieties == nil {
		return fmt.Errorf("snapshot must contain orders and microgreenVarieties: %w", ErrValidation)
	}
	return s.apply(ctx, "replace", func(state *models.AppData) error {
		next := data.Clone()
		next.Normalize()
		*state = next
		return nil
	})
}

// Reset restores the seeded defaults.
func (s *Store) Reset(ctx context.Context) error {
	return s.apply(ctx, "reset", func(state *models.AppData) error {
		*state = models.DefaultAppData()
		return nil
	})
}

// apply runs transition on a copy of the state, commits it on success and then persists.
func (s *Store) apply(ctx context.Context, action string, transition func(state *models.AppData) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := transition(&next); err != nil {
		s.logger.Debug("transition rejected", zap.String("action", action), zap.Error(err))
		return err
	}
	s.state = next
	s.persistLocked(ctx, action)
	return nil
}

func (s *Store) persistLocked(ctx context.Context, action string) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(ctx, s.state.Clone()); err != nil {
		s.persistErr = fmt.Errorf("save snapshot after %s: %w", action, err)
		s.logger.Error("failed to persist application data", zap.String("action", action), zap.Error(err))
		return
	}
	s.persistErr = nil
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

func businessf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrBusinessRule)
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}
