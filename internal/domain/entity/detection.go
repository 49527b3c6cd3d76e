package entity

import (
	"strconv"
	"strings"
)

const (
	nutritionHeader   = "Nutrition Info:"
	recipesHeader     = "Recipes:"
	nutritionNotFound = "Not Found"
)

// Detection хранит итог одного тика: предсказание и обогащение.
type Detection struct {
	Prediction   Prediction      `json:"prediction"`
	Nutrition    NutritionRecord `json:"nutrition"`
	NutritionErr error           `json:"-"` // причина, по которой Nutrition пуст
	Recipes      RecipeList      `json:"recipes"`
}

// LabelText текст для поля с результатом распознавания
func (d *Detection) LabelText() string {
	return d.Prediction.Text()
}

// NutritionText собирает блок пищевой ценности, "Not Found" при ошибке поиска.
func (d *Detection) NutritionText() string {
	if d.NutritionErr != nil || len(d.Nutrition) == 0 {
		return nutritionHeader + "\n" + nutritionNotFound
	}

	n := min(len(d.Nutrition), MaxNutrients)
	lines := make([]string, 0, n)
	for _, nutrient := range d.Nutrition[:n] {
		lines = append(lines, nutrient.Name+": "+strconv.FormatFloat(nutrient.Value, 'f', -1, 64))
	}
	return nutritionHeader + "\n" + strings.Join(lines, "\n")
}

// RecipesText собирает блок рецептов
func (d *Detection) RecipesText() string {
	recipes := d.Recipes
	if len(recipes) == 0 {
		recipes = NoRecipes()
	}
	if len(recipes) > MaxRecipes {
		recipes = recipes[:MaxRecipes]
	}
	return recipesHeader + "\n" + strings.Join(recipes, "\n")
}
