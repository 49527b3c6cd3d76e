package classifier

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"produce-vision/internal/domain/entity"
	"produce-vision/internal/domain/port"
)

// Config параметры загрузки модели
type Config struct {
	ModelPath   string
	LibraryPath string // путь к libonnxruntime, пусто: системный
	InputName   string
	OutputName  string
	InputSize   int
}

// ONNXClassifier держит загруженную модель на всё время жизни процесса.
// Тензоры общие, поэтому прогоны сериализуются мьютексом.
type ONNXClassifier struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	size         int

	// input и output смотрят в память тензоров, run прогоняет сессию.
	input  []float32
	output []float32
	run    func() error
}

// NewONNXClassifier загружает модель. Ошибка здесь должна прерывать запуск.
func NewONNXClassifier(cfg Config) (*ONNXClassifier, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("model path is empty")
	}
	if cfg.InputSize <= 0 {
		cfg.InputSize = InputSize
	}
	if cfg.InputName == "" {
		cfg.InputName = "input"
	}
	if cfg.OutputName == "" {
		cfg.OutputName = "output"
	}

	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	size := int64(cfg.InputSize)
	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, size, size, channels))
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(entity.ClassCount())))
	if err != nil {
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXClassifier{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		size:         cfg.InputSize,
		input:        inputTensor.GetData(),
		output:       outputTensor.GetData(),
		run:          session.Run,
	}, nil
}

// Classify прогоняет кадр через модель.
func (c *ONNXClassifier) Classify(ctx context.Context, img image.Image) (entity.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return entity.Prediction{}, err
	}
	if img == nil {
		return entity.Prediction{}, errors.New("empty image")
	}

	input := Preprocess(img, c.size)

	c.mu.Lock()
	defer c.mu.Unlock()

	copy(c.input, input)
	if err := c.run(); err != nil {
		return entity.Prediction{}, fmt.Errorf("inference failed: %w", err)
	}

	return predictionFromScores(c.output)
}

// Close освобождает сессию и окружение ONNX Runtime.
func (c *ONNXClassifier) Close() {
	if c.inputTensor != nil {
		c.inputTensor.Destroy()
	}
	if c.outputTensor != nil {
		c.outputTensor.Destroy()
	}
	if c.session != nil {
		c.session.Destroy()
	}
	ort.DestroyEnvironment()
}

func predictionFromScores(scores []float32) (entity.Prediction, error) {
	idx, confidence := argmax(scores)
	label, ok := entity.LabelByIndex(idx)
	if !ok {
		return entity.Prediction{}, fmt.Errorf("unexpected class index %d of %d scores", idx, len(scores))
	}
	return entity.Prediction{Label: label, Confidence: confidence}, nil
}

// Проверка реализации интерфейса
var _ port.ProduceClassifier = (*ONNXClassifier)(nil)
