package entity

import "errors"

const (
	MaxNutrients = 5 // сколько нутриентов показываем
	MaxRecipes   = 5 // сколько рецептов запрашиваем и показываем

	NoRecipesPlaceholder = "No recipes found."
)

// ErrNoNutritionData сигнальная ошибка: данных о пищевой ценности нет.
var ErrNoNutritionData = errors.New("no nutrition data found")

// Nutrient одна строка пищевой ценности
type Nutrient struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// NutritionRecord упорядоченный набор нутриентов (не больше MaxNutrients).
type NutritionRecord []Nutrient

// RecipeList упорядоченный список названий рецептов (не больше MaxRecipes).
type RecipeList []string

// NoRecipes возвращает список-заглушку, когда рецептов нет.
func NoRecipes() RecipeList {
	return RecipeList{NoRecipesPlaceholder}
}
