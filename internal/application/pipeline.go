package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"produce-vision/internal/domain/entity"
	"produce-vision/internal/domain/port"
)

// DefaultTickInterval период опроса камеры
const DefaultTickInterval = time.Second

// Pipeline конвейер Idle/Running: по тику берёт кадр, распознаёт его
// и заменяет показанный результат. Тики идут в отдельной горутине,
// подписчики сами переносят обновления в свой поток.
type Pipeline struct {
	detector *DetectionService
	camera   port.Camera
	states   port.StateRepository
	interval time.Duration
	logger   *slog.Logger

	// lifeMu держится на весь переход Start/Stop: камера, таймер и
	// публикация Running меняются вместе.
	lifeMu sync.Mutex

	mu          sync.Mutex
	cancel      context.CancelFunc // nil в состоянии Idle
	subscribers []func(entity.UIState)

	// pubMu сохраняет порядок "обновить состояние, оповестить подписчиков".
	pubMu sync.Mutex
}

// NewPipeline создаёт конвейер в состоянии Idle.
func NewPipeline(detector *DetectionService, camera port.Camera, states port.StateRepository, interval time.Duration, logger *slog.Logger) *Pipeline {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	return &Pipeline{
		detector: detector,
		camera:   camera,
		states:   states,
		interval: interval,
		logger:   logger,
	}
}

// Subscribe регистрирует получателя каждого нового состояния.
// fn вызывается из горутины конвейера или из Start/Stop, не должен
// блокироваться надолго и вызывать Start/Stop сам.
func (p *Pipeline) Subscribe(fn func(entity.UIState)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.subscribers = append(p.subscribers, fn)
}

// Running сообщает, взведён ли таймер.
func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.cancel != nil
}

// State возвращает показанное сейчас состояние.
func (p *Pipeline) State(ctx context.Context) (entity.UIState, error) {
	return p.states.Get(ctx)
}

// Start включает камеру и взводит периодический тик.
// Повторный Start без Stop ничего не делает.
func (p *Pipeline) Start(ctx context.Context) error {
	p.lifeMu.Lock()
	defer p.lifeMu.Unlock()

	return p.start(ctx)
}

// Stop снимает тик и выключает камеру. Тик, который уже выполняется,
// доводится до конца и публикует свой результат.
func (p *Pipeline) Stop(ctx context.Context) error {
	p.lifeMu.Lock()
	defer p.lifeMu.Unlock()

	return p.stop(ctx)
}

// Toggle переключает Idle <-> Running и возвращает новое значение Running.
func (p *Pipeline) Toggle(ctx context.Context) (bool, error) {
	p.lifeMu.Lock()
	defer p.lifeMu.Unlock()

	if p.Running() {
		return false, p.stop(ctx)
	}

	if err := p.start(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Pipeline) start(ctx context.Context) error {
	if p.Running() {
		return nil
	}

	if err := p.camera.Start(ctx); err != nil {
		return fmt.Errorf("start camera: %w", err)
	}

	// Цикл живёт до Stop, а не до конца запроса, который его запустил.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	go p.loop(runCtx)

	p.logger.Info("pipeline started", "interval", p.interval)
	p.publish(ctx, func(s *entity.UIState) { s.Running = true })

	return nil
}

func (p *Pipeline) stop(ctx context.Context) error {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	err := p.camera.Stop()

	p.logger.Info("pipeline stopped")
	p.publish(ctx, func(s *entity.UIState) { s.Running = false })

	if err != nil {
		return fmt.Errorf("stop camera: %w", err)
	}
	return nil
}

// Tick выполняет один проход: кадр -> распознавание -> замена состояния.
// Без кадра возвращает false и ничего не меняет.
func (p *Pipeline) Tick(ctx context.Context) (bool, error) {
	frame, ok := p.camera.Frame()
	if !ok || frame == nil {
		return false, nil
	}

	detection, err := p.detector.Detect(ctx, frame)
	if err != nil {
		return false, err
	}

	p.publish(ctx, func(s *entity.UIState) { s.Apply(detection) })
	return true, nil
}

func (p *Pipeline) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}

			// Stop не обрывает запросы тика, который уже начался.
			if _, err := p.Tick(context.WithoutCancel(ctx)); err != nil {
				p.logger.Error("detection tick skipped", "err", err)
			}
		}
	}
}

func (p *Pipeline) publish(ctx context.Context, fn func(*entity.UIState)) {
	p.pubMu.Lock()
	defer p.pubMu.Unlock()

	state, err := p.states.Update(context.WithoutCancel(ctx), fn)
	if err != nil {
		p.logger.Error("failed to update state", "err", err)
		return
	}

	p.mu.Lock()
	subscribers := slices.Clone(p.subscribers)
	p.mu.Unlock()

	for _, notify := range subscribers {
		notify(state)
	}
}
