package entity

// PipelineState состояние конвейера распознавания
type PipelineState string

const (
	PipelineIdle    PipelineState = "idle"    // камера и таймер остановлены
	PipelineRunning PipelineState = "running" // таймер взведён, тики идут
)

const (
	InitialLabelText     = "Press Start to Detect"
	InitialNutritionText = nutritionHeader + " "
	InitialRecipesText   = recipesHeader + " "
)

// UIState то, что сейчас показано пользователю
type UIState struct {
	Label     string `json:"label"`
	Nutrition string `json:"nutrition"`
	Recipes   string `json:"recipes"`
	Running   bool   `json:"running"`
}

// NewUIState создаёт состояние с начальными заглушками
func NewUIState() UIState {
	return UIState{
		Label:     InitialLabelText,
		Nutrition: InitialNutritionText,
		Recipes:   InitialRecipesText,
	}
}

// Apply целиком заменяет показанный результат новым.
func (s *UIState) Apply(d *Detection) {
	s.Label = d.LabelText()
	s.Nutrition = d.NutritionText()
	s.Recipes = d.RecipesText()
}

// State возвращает состояние конвейера по флагу Running.
func (s UIState) State() PipelineState {
	if s.Running {
		return PipelineRunning
	}
	return PipelineIdle
}
