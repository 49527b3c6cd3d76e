package port

import (
	"context"
	"image"

	"produce-vision/internal/domain/entity"
)

// ProduceClassifier интерфейс классификатора продуктов
type ProduceClassifier interface {
	// Classify возвращает класс с максимальной вероятностью и саму вероятность
	Classify(ctx context.Context, img image.Image) (entity.Prediction, error)
}
