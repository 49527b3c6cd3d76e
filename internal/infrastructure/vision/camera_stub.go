//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"
	"image"
	"time"

	"produce-vision/internal/domain/port"
)

type GoCVCamera struct {
	DeviceID   int
	Width      int
	Height     int
	FrameDelay time.Duration
}

// NewGoCVCamera создаёт камеру-заглушку (без OpenCV).
func NewGoCVCamera(deviceID int) *GoCVCamera {
	return &GoCVCamera{
		DeviceID:   deviceID,
		Width:      640,
		Height:     480,
		FrameDelay: 33 * time.Millisecond,
	}
}

// Start возвращает ошибку, если сборка без тега gocv.
func (c *GoCVCamera) Start(ctx context.Context) error {
	_ = ctx
	return errors.New("gocv build tag is not enabled")
}

// Stop ничего не делает.
func (c *GoCVCamera) Stop() error {
	return nil
}

// Frame никогда не отдаёт кадр.
func (c *GoCVCamera) Frame() (image.Image, bool) {
	return nil, false
}

// Проверка реализации интерфейса
var _ port.Camera = (*GoCVCamera)(nil)
