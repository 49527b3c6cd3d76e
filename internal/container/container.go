package container

import (
	"log/slog"
	"time"

	app "produce-vision/internal/application"
	"produce-vision/internal/domain/port"
)

type Container struct {
	DetectionService *app.DetectionService
	Pipeline         *app.Pipeline
}

// Deps внешние зависимости, собранные в main
type Deps struct {
	Classifier   port.ProduceClassifier
	Nutrition    port.NutritionSource
	Recipes      port.RecipeSource
	Camera       port.Camera
	States       port.StateRepository
	TickInterval time.Duration
	Logger       *slog.Logger
}

func New(deps Deps) *Container {
	detectionService := app.NewDetectionService(deps.Classifier, deps.Nutrition, deps.Recipes, deps.Logger)
	pipeline := app.NewPipeline(detectionService, deps.Camera, deps.States, deps.TickInterval, deps.Logger)

	return &Container{
		DetectionService: detectionService,
		Pipeline:         pipeline,
	}
}
