package port

import (
	"context"

	"produce-vision/internal/domain/entity"
)

// NutritionSource источник данных о пищевой ценности
type NutritionSource interface {
	// Lookup ищет продукт по названию. Любая неудача оборачивает entity.ErrNoNutritionData
	Lookup(ctx context.Context, food string) (entity.NutritionRecord, error)
}

// RecipeSource источник рецептов
type RecipeSource interface {
	// Search возвращает до entity.MaxRecipes названий рецептов
	Search(ctx context.Context, food string) (entity.RecipeList, error)
}
