package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"produce-vision/internal/domain/entity"
	"produce-vision/internal/infrastructure/storage"
	"produce-vision/internal/logger"
)

type pipelineFixture struct {
	pipeline   *Pipeline
	camera     *fakeCamera
	classifier *fakeClassifier
	nutrition  *fakeNutrition
	recipes    *fakeRecipes
}

func newPipelineFixture(interval time.Duration) *pipelineFixture {
	f := &pipelineFixture{
		camera:     &fakeCamera{},
		classifier: &fakeClassifier{index: 4, conf: 0.876},
		nutrition:  &fakeNutrition{record: entity.NutritionRecord{{Name: "Protein", Value: 0.88}}},
		recipes:    &fakeRecipes{recipes: entity.RecipeList{"Salsa", "Gazpacho"}},
	}
	detector := NewDetectionService(f.classifier, f.nutrition, f.recipes, logger.Discard())
	f.pipeline = NewPipeline(detector, f.camera, storage.NewMemoryStateRepository(), interval, logger.Discard())
	return f
}

func TestPipeline_StartIsIdempotent(t *testing.T) {
	f := newPipelineFixture(time.Hour)
	ctx := context.Background()

	require.NoError(t, f.pipeline.Start(ctx))
	require.NoError(t, f.pipeline.Start(ctx))
	require.True(t, f.pipeline.Running())

	starts, _ := f.camera.counts()
	require.Equal(t, 1, starts)

	state, err := f.pipeline.State(ctx)
	require.NoError(t, err)
	require.True(t, state.Running)

	require.NoError(t, f.pipeline.Stop(ctx))
	require.NoError(t, f.pipeline.Stop(ctx))
	require.False(t, f.pipeline.Running())

	_, stops := f.camera.counts()
	require.Equal(t, 1, stops)
}

func TestPipeline_StopBeforeFirstFrameKeepsPlaceholders(t *testing.T) {
	f := newPipelineFixture(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, f.pipeline.Start(ctx))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, f.pipeline.Stop(ctx))

	state, err := f.pipeline.State(ctx)
	require.NoError(t, err)
	require.Equal(t, entity.NewUIState(), state)
	require.Zero(t, f.classifier.callCount())
}

func TestPipeline_TickWithoutFrameIsSkipped(t *testing.T) {
	f := newPipelineFixture(time.Hour)
	ctx := context.Background()

	done, err := f.pipeline.Tick(ctx)
	require.NoError(t, err)
	require.False(t, done)
	require.Zero(t, f.classifier.callCount())

	state, err := f.pipeline.State(ctx)
	require.NoError(t, err)
	require.Equal(t, entity.NewUIState(), state)
}

func TestPipeline_TickReplacesPreviousResult(t *testing.T) {
	f := newPipelineFixture(time.Hour)
	ctx := context.Background()
	f.camera.setFrame(testFrame())

	done, err := f.pipeline.Tick(ctx)
	require.NoError(t, err)
	require.True(t, done)

	state, err := f.pipeline.State(ctx)
	require.NoError(t, err)
	require.Equal(t, "Tomato (0.88)", state.Label)
	require.Equal(t, "Nutrition Info:\nProtein: 0.88", state.Nutrition)
	require.Equal(t, "Recipes:\nSalsa\nGazpacho", state.Recipes)

	f.classifier.set(1, 0.4)
	f.nutrition.err = entity.ErrNoNutritionData
	f.recipes.recipes = entity.NoRecipes()

	_, err = f.pipeline.Tick(ctx)
	require.NoError(t, err)

	state, err = f.pipeline.State(ctx)
	require.NoError(t, err)
	require.Equal(t, "Eggplant (0.40)", state.Label)
	require.Equal(t, "Nutrition Info:\nNot Found", state.Nutrition)
	require.Equal(t, "Recipes:\nNo recipes found.", state.Recipes)
}

func TestPipeline_ClassifierErrorLeavesState(t *testing.T) {
	f := newPipelineFixture(time.Hour)
	ctx := context.Background()
	f.camera.setFrame(testFrame())
	f.classifier.err = errors.New("inference failed")

	done, err := f.pipeline.Tick(ctx)
	require.Error(t, err)
	require.False(t, done)

	state, err := f.pipeline.State(ctx)
	require.NoError(t, err)
	require.Equal(t, entity.NewUIState(), state)
}

func TestPipeline_TicksWhileRunning(t *testing.T) {
	f := newPipelineFixture(10 * time.Millisecond)
	ctx := context.Background()

	var mu sync.Mutex
	var seen []entity.UIState
	f.pipeline.Subscribe(func(s entity.UIState) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	require.NoError(t, f.pipeline.Start(ctx))
	f.camera.setFrame(testFrame())

	require.Eventually(t, func() bool {
		state, err := f.pipeline.State(ctx)
		return err == nil && state.Label == "Tomato (0.88)"
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, f.pipeline.Stop(ctx))

	// после Stop новые тики не запускаются
	time.Sleep(50 * time.Millisecond)
	calls := f.classifier.callCount()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, calls, f.classifier.callCount())

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	require.True(t, seen[0].Running)
	require.False(t, seen[len(seen)-1].Running)
}

func TestPipeline_Toggle(t *testing.T) {
	f := newPipelineFixture(time.Hour)
	ctx := context.Background()

	running, err := f.pipeline.Toggle(ctx)
	require.NoError(t, err)
	require.True(t, running)

	running, err = f.pipeline.Toggle(ctx)
	require.NoError(t, err)
	require.False(t, running)
}

func TestPipeline_CameraStartError(t *testing.T) {
	f := newPipelineFixture(time.Hour)
	f.camera.startErr = errors.New("no device")
	ctx := context.Background()

	require.Error(t, f.pipeline.Start(ctx))
	require.False(t, f.pipeline.Running())

	state, err := f.pipeline.State(ctx)
	require.NoError(t, err)
	require.False(t, state.Running)
}

func TestPipeline_StartWaitsForInFlightStop(t *testing.T) {
	f := newPipelineFixture(time.Hour)
	ctx := context.Background()

	require.NoError(t, f.pipeline.Start(ctx))

	f.camera.stopEntered = make(chan struct{}, 1)
	f.camera.releaseStop = make(chan struct{})

	stopDone := make(chan error, 1)
	go func() { stopDone <- f.pipeline.Stop(ctx) }()
	<-f.camera.stopEntered

	startDone := make(chan error, 1)
	go func() { startDone <- f.pipeline.Start(ctx) }()

	select {
	case <-startDone:
		t.Fatal("Start finished while Stop was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(f.camera.releaseStop)
	require.NoError(t, <-stopDone)
	require.NoError(t, <-startDone)

	state, err := f.pipeline.State(ctx)
	require.NoError(t, err)
	require.True(t, f.pipeline.Running())
	require.True(t, state.Running)
	require.True(t, f.camera.isRunning())

	f.camera.mu.Lock()
	f.camera.stopEntered, f.camera.releaseStop = nil, nil
	f.camera.mu.Unlock()
	require.NoError(t, f.pipeline.Stop(ctx))
}

func TestPipeline_ConcurrentTogglesStayConsistent(t *testing.T) {
	f := newPipelineFixture(time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 21; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.pipeline.Toggle(ctx)
		}()
	}
	wg.Wait()

	state, err := f.pipeline.State(ctx)
	require.NoError(t, err)
	require.Equal(t, f.pipeline.Running(), state.Running)
	require.Equal(t, f.pipeline.Running(), f.camera.isRunning())
	require.True(t, f.pipeline.Running())

	require.NoError(t, f.pipeline.Stop(ctx))
}
