package port

import (
	"context"

	"produce-vision/internal/domain/entity"
)

// StateRepository интерфейс хранилища показанного состояния
type StateRepository interface {
	// Get возвращает текущее состояние
	Get(ctx context.Context) (entity.UIState, error)

	// Update атомарно изменяет состояние и возвращает новое
	Update(ctx context.Context, fn func(*entity.UIState)) (entity.UIState, error)
}
