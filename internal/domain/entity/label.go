package entity

import "fmt"

// produceClasses порядок классов на выходе модели
var produceClasses = [...]string{
	"Banana",
	"Eggplant",
	"Okra",
	"Onion",
	"Tomato",
}

// ClassLabel связывает индекс выхода модели с названием продукта
type ClassLabel struct {
	Index int    // индекс в выходном векторе модели
	Name  string // человекочитаемое название
}

// ClassCount возвращает ширину выходного вектора модели.
func ClassCount() int {
	return len(produceClasses)
}

// LabelByIndex возвращает метку по индексу класса.
func LabelByIndex(index int) (ClassLabel, bool) {
	if index < 0 || index >= len(produceClasses) {
		return ClassLabel{}, false
	}
	return ClassLabel{Index: index, Name: produceClasses[index]}, true
}

// Labels возвращает все метки в порядке индексов
func Labels() []ClassLabel {
	labels := make([]ClassLabel, 0, len(produceClasses))
	for i, name := range produceClasses {
		labels = append(labels, ClassLabel{Index: i, Name: name})
	}
	return labels
}

// Prediction результат одного прогона классификатора.
type Prediction struct {
	Label      ClassLabel `json:"label"`
	Confidence float32    `json:"confidence"` // вероятность победившего класса, [0,1]
}

// Text форматирует предсказание для вывода: "Tomato (0.93)".
func (p Prediction) Text() string {
	return fmt.Sprintf("%s (%.2f)", p.Label.Name, p.Confidence)
}
