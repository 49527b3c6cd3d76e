//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"produce-vision/internal/domain/port"
)

type GoCVCamera struct {
	DeviceID   int
	Width      int
	Height     int
	FrameDelay time.Duration

	mu     sync.RWMutex
	latest image.Image
	cancel context.CancelFunc
	done   chan struct{}
}

// NewGoCVCamera создаёт камеру 640×480 с опросом ~30 кадров в секунду.
func NewGoCVCamera(deviceID int) *GoCVCamera {
	return &GoCVCamera{
		DeviceID:   deviceID,
		Width:      640,
		Height:     480,
		FrameDelay: 33 * time.Millisecond,
	}
}

// Start открывает устройство и запускает цикл чтения кадров.
// Повторный вызов на работающей камере ничего не делает.
func (c *GoCVCamera) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return nil
	}

	webcam, err := gocv.VideoCaptureDevice(c.DeviceID)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.DeviceID, err)
	}
	if !webcam.IsOpened() {
		_ = webcam.Close()
		return fmt.Errorf("open camera %d: device is not opened", c.DeviceID)
	}
	webcam.Set(gocv.VideoCaptureFrameWidth, float64(c.Width))
	webcam.Set(gocv.VideoCaptureFrameHeight, float64(c.Height))

	// Камера живёт до Stop, а не до конца запроса, который её включил.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel
	c.done = make(chan struct{})

	go c.capture(runCtx, webcam, c.done)

	return nil
}

// Stop останавливает чтение, закрывает устройство и забывает последний кадр.
func (c *GoCVCamera) Stop() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()
	<-done

	c.mu.Lock()
	c.latest = nil
	c.mu.Unlock()

	return nil
}

// Frame возвращает последний прочитанный кадр.
func (c *GoCVCamera) Frame() (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.latest, c.latest != nil
}

func (c *GoCVCamera) capture(ctx context.Context, webcam *gocv.VideoCapture, done chan<- struct{}) {
	defer close(done)
	defer webcam.Close()

	mat := gocv.NewMat()
	defer mat.Close()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if ok := webcam.Read(&mat); ok && !mat.Empty() {
			// ToImage сам переводит BGR в RGBA.
			if img, err := mat.ToImage(); err == nil {
				c.mu.Lock()
				c.latest = img
				c.mu.Unlock()
			}
		}

		time.Sleep(c.FrameDelay)
	}
}

// Проверка реализации интерфейса
var _ port.Camera = (*GoCVCamera)(nil)
