package classifier

import (
	"image"

	"github.com/nfnt/resize"
)

// InputSize сторона квадратного входа модели
const InputSize = 100

const channels = 3

// Preprocess приводит кадр к входу модели: size×size, RGB, значения в [0,1],
// раскладка NHWC (пиксель за пикселем, каналы подряд).
func Preprocess(img image.Image, size int) []float32 {
	resized := resize.Resize(uint(size), uint(size), img, resize.Bilinear)
	bounds := resized.Bounds()

	data := make([]float32, size*size*channels)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			i := (y*size + x) * channels
			data[i] = float32(r>>8) / 255.0
			data[i+1] = float32(g>>8) / 255.0
			data[i+2] = float32(b>>8) / 255.0
		}
	}

	return data
}

// argmax возвращает индекс максимума; при равенстве побеждает первый.
func argmax(scores []float32) (int, float32) {
	if len(scores) == 0 {
		return -1, 0
	}

	maxIdx := 0
	maxVal := scores[0]
	for i, val := range scores {
		if val > maxVal {
			maxVal = val
			maxIdx = i
		}
	}
	return maxIdx, maxVal
}
