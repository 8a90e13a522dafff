package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	apperrors "github.com/Conceptual-Machines/orchestra-api/internal/errors"
	"github.com/Conceptual-Machines/orchestra-api/internal/models"
	"gorm.io/gorm"
)

// Store persists composition records
type Store interface {
	Save(ctx context.Context, c *models.Composition) error
	Get(ctx context.Context, id string) (*models.Composition, error)
	// Latest returns the most recently created composition
	Latest(ctx context.Context) (*models.Composition, error)
	Ping(ctx context.Context) error
}

// GormStore keeps compositions in postgres
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Save(ctx context.Context, c *models.Composition) error {
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to save composition: %w", err)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, id string) (*models.Composition, error) {
	var c models.Composition
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "composition "+id)
	}
	return &c, nil
}

func (s *GormStore) Latest(ctx context.Context) (*models.Composition, error) {
	var c models.Composition
	if err := s.db.WithContext(ctx).Order("created_at DESC").First(&c).Error; err != nil {
		return nil, notFound(err, "no compositions yet")
	}
	return &c, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, what)
	}
	return err
}

// MemoryStore keeps compositions in process. It is used when no database
// is configured and by the CLI.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*models.Composition
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*models.Composition)}
}

func (s *MemoryStore) Save(_ context.Context, c *models.Composition) error {
	if c.ID == "" {
		return fmt.Errorf("%w: composition has no id", apperrors.ErrInvalidRequest)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *c
	if _, exists := s.byID[c.ID]; !exists {
		s.order = append(s.order, c.ID)
	}
	s.byID[c.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Composition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: composition %s", apperrors.ErrNotFound, id)
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) Latest(_ context.Context) (*models.Composition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.order) == 0 {
		return nil, fmt.Errorf("%w: no compositions yet", apperrors.ErrNotFound)
	}
	cp := *s.byID[s.order[len(s.order)-1]]
	return &cp, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
