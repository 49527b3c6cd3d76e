package storage

import (
	"context"
	"sync"

	"produce-vision/internal/domain/entity"
	"produce-vision/internal/domain/port"
)

// MemoryStateRepository in-memory хранилище единственного живого состояния
type MemoryStateRepository struct {
	mu    sync.RWMutex
	state entity.UIState
}

// NewMemoryStateRepository создаёт хранилище с начальными заглушками
func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{
		state: entity.NewUIState(),
	}
}

// Get возвращает копию текущего состояния
func (r *MemoryStateRepository) Get(ctx context.Context) (entity.UIState, error) {
	if err := ctx.Err(); err != nil {
		return entity.UIState{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state, nil
}

// Update применяет fn к состоянию под блокировкой
func (r *MemoryStateRepository) Update(ctx context.Context, fn func(*entity.UIState)) (entity.UIState, error) {
	if err := ctx.Err(); err != nil {
		return entity.UIState{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.state
	fn(&next)
	r.state = next

	return next, nil
}

// Проверка реализации интерфейса
var _ port.StateRepository = (*MemoryStateRepository)(nil)
