package port

import (
	"context"
	"image"
)

// Camera источник кадров
type Camera interface {
	// Start включает захват кадров
	Start(ctx context.Context) error

	// Stop выключает захват и сбрасывает последний кадр
	Stop() error

	// Frame возвращает последний кадр, false если кадра ещё нет
	Frame() (image.Image, bool)
}
