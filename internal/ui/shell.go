package ui

import (
	"context"
	"image/color"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	app "produce-vision/internal/application"
	"produce-vision/internal/domain/entity"
	"produce-vision/internal/domain/port"
)

const (
	feedInterval = 33 * time.Millisecond // ~30 FPS

	buttonStart = "Start"
	buttonStop  = "Stop"
)

var background = color.NRGBA{R: 48, G: 58, B: 80, A: 255}

// Shell окно приложения: видео с камеры, результат и кнопка Start/Stop.
// Логики здесь нет, только отрисовка UIState и передача нажатий в конвейер.
type Shell struct {
	pipeline *app.Pipeline
	camera   port.Camera
	logger   *slog.Logger

	window    fyne.Window
	feed      *canvas.Image
	label     *widget.Label
	nutrition *widget.Label
	recipes   *widget.Label
	button    *widget.Button
}

// NewShell собирает окно. Вызывать из основного потока fyne.
func NewShell(a fyne.App, pipeline *app.Pipeline, camera port.Camera, logger *slog.Logger) *Shell {
	s := &Shell{
		pipeline: pipeline,
		camera:   camera,
		logger:   logger,
		window:   a.NewWindow("Produce Vision"),
	}

	s.feed = canvas.NewImageFromImage(nil)
	s.feed.FillMode = canvas.ImageFillContain
	s.feed.SetMinSize(fyne.NewSize(640, 480))

	initial := entity.NewUIState()
	s.label = widget.NewLabel(initial.Label)
	s.label.Alignment = fyne.TextAlignCenter
	s.nutrition = widget.NewLabel(initial.Nutrition)
	s.nutrition.Wrapping = fyne.TextWrapWord
	s.recipes = widget.NewLabel(initial.Recipes)
	s.recipes.Wrapping = fyne.TextWrapWord

	s.button = widget.NewButton(buttonStart, s.toggle)

	info := container.NewGridWithColumns(2, s.nutrition, s.recipes)
	content := container.NewBorder(nil, container.NewVBox(s.label, info, s.button), nil, nil, s.feed)
	s.window.SetContent(container.NewStack(canvas.NewRectangle(background), content))
	s.window.Resize(fyne.NewSize(720, 900))

	return s
}

// Run показывает окно и блокируется до его закрытия.
func (s *Shell) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.pipeline.Subscribe(func(state entity.UIState) {
		fyne.Do(func() { s.render(state) })
	})
	go s.refreshFeed(ctx)

	s.window.SetOnClosed(func() {
		if err := s.pipeline.Stop(context.Background()); err != nil {
			s.logger.Warn("failed to stop pipeline", "err", err)
		}
	})
	s.window.ShowAndRun()
}

func (s *Shell) render(state entity.UIState) {
	s.label.SetText(state.Label)
	s.nutrition.SetText(state.Nutrition)
	s.recipes.SetText(state.Recipes)

	if state.Running {
		s.button.SetText(buttonStop)
	} else {
		s.button.SetText(buttonStart)
		s.feed.Image = nil
		s.feed.Refresh()
	}
}

func (s *Shell) toggle() {
	running, err := s.pipeline.Toggle(context.Background())
	if err != nil {
		s.logger.Error("failed to toggle pipeline", "running", running, "err", err)
	}
}

func (s *Shell) refreshFeed(ctx context.Context) {
	ticker := time.NewTicker(feedInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame, ok := s.camera.Frame()
			if !ok {
				continue
			}
			fyne.Do(func() {
				s.feed.Image = frame
				s.feed.Refresh()
			})
		}
	}
}
