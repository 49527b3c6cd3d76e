package app

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"

	"produce-vision/internal/domain/entity"
)

type fakeCamera struct {
	mu       sync.Mutex
	frame    image.Image
	starts   int
	stops    int
	running  bool
	startErr error

	// stopEntered получает сигнал при входе в Stop, затем Stop ждёт releaseStop.
	stopEntered chan struct{}
	releaseStop chan struct{}
}

func (c *fakeCamera) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.startErr != nil {
		return c.startErr
	}
	c.starts++
	c.running = true
	return nil
}

func (c *fakeCamera) Stop() error {
	c.mu.Lock()
	entered, release := c.stopEntered, c.releaseStop
	c.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
		<-release
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stops++
	c.running = false
	c.frame = nil
	return nil
}

func (c *fakeCamera) Frame() (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame, c.frame != nil
}

func (c *fakeCamera) setFrame(img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame = img
}

func (c *fakeCamera) isRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *fakeCamera) counts() (starts, stops int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.starts, c.stops
}

type fakeClassifier struct {
	mu    sync.Mutex
	index int
	conf  float32
	err   error
	calls int
}

func (f *fakeClassifier) Classify(ctx context.Context, img image.Image) (entity.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return entity.Prediction{}, f.err
	}
	label, ok := entity.LabelByIndex(f.index)
	if !ok {
		return entity.Prediction{}, errors.New("bad index")
	}
	return entity.Prediction{Label: label, Confidence: f.conf}, nil
}

func (f *fakeClassifier) set(index int, conf float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.index, f.conf = index, conf
}

func (f *fakeClassifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeNutrition struct {
	mu      sync.Mutex
	record  entity.NutritionRecord
	err     error
	queries []string
}

func (f *fakeNutrition) Lookup(ctx context.Context, food string) (entity.NutritionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, food)
	return f.record, f.err
}

type fakeRecipes struct {
	mu      sync.Mutex
	recipes entity.RecipeList
	err     error
	queries []string
}

func (f *fakeRecipes) Search(ctx context.Context, food string) (entity.RecipeList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, food)
	return f.recipes, f.err
}

func testFrame() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	img.Set(10, 10, color.RGBA{R: 200, A: 255})
	return img
}
