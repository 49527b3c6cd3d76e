package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"produce-vision/internal/domain/entity"
	"produce-vision/internal/domain/port"
)

// DetectionService распознаёт продукт и обогащает результат.
type DetectionService struct {
	classifier port.ProduceClassifier
	nutrition  port.NutritionSource
	recipes    port.RecipeSource
	logger     *slog.Logger
}

// NewDetectionService создаёт сервис; модель передаётся уже загруженной.
func NewDetectionService(classifier port.ProduceClassifier, nutrition port.NutritionSource, recipes port.RecipeSource, logger *slog.Logger) *DetectionService {
	return &DetectionService{
		classifier: classifier,
		nutrition:  nutrition,
		recipes:    recipes,
		logger:     logger,
	}
}

// Detect классифицирует кадр и последовательно ищет пищевую ценность и рецепты.
// Неудачные поиски превращаются в заглушки, ошибка классификатора возвращается.
func (s *DetectionService) Detect(ctx context.Context, img image.Image) (*entity.Detection, error) {
	if s.classifier == nil {
		return nil, errors.New("classifier is not configured")
	}

	prediction, err := s.classifier.Classify(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	food := prediction.Label.Name
	detection := &entity.Detection{Prediction: prediction}

	detection.Nutrition, detection.NutritionErr = s.lookupNutrition(ctx, food)
	detection.Recipes = s.searchRecipes(ctx, food)

	s.logger.Debug("detection finished",
		"label", detection.LabelText(),
		"nutrients", len(detection.Nutrition),
		"recipes", len(detection.Recipes),
	)

	return detection, nil
}

func (s *DetectionService) lookupNutrition(ctx context.Context, food string) (entity.NutritionRecord, error) {
	if s.nutrition == nil {
		return nil, entity.ErrNoNutritionData
	}

	record, err := s.nutrition.Lookup(ctx, food)
	if err != nil {
		s.logger.Warn("nutrition lookup failed", "food", food, "err", err)
		if !errors.Is(err, entity.ErrNoNutritionData) {
			err = fmt.Errorf("%w: %v", entity.ErrNoNutritionData, err)
		}
		return nil, err
	}
	return record, nil
}

func (s *DetectionService) searchRecipes(ctx context.Context, food string) entity.RecipeList {
	if s.recipes == nil {
		return entity.NoRecipes()
	}

	recipes, err := s.recipes.Search(ctx, food)
	if err != nil {
		s.logger.Warn("recipe search failed", "food", food, "err", err)
		return entity.NoRecipes()
	}
	if len(recipes) == 0 {
		return entity.NoRecipes()
	}
	return recipes
}
