package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/gin-gonic/gin"

	"produce-vision/config"
	telegram "produce-vision/internal/api"
	"produce-vision/internal/api/httpapi"
	"produce-vision/internal/container"
	"produce-vision/internal/infrastructure/classifier"
	"produce-vision/internal/infrastructure/nutrition"
	"produce-vision/internal/infrastructure/recipe"
	"produce-vision/internal/infrastructure/storage"
	"produce-vision/internal/infrastructure/vision"
	"produce-vision/internal/logger"
	"produce-vision/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Модель загружается один раз на весь процесс, без неё запуск прерывается
	log.Info("loading model", "path", cfg.ModelPath)
	model, err := classifier.NewONNXClassifier(classifier.Config{
		ModelPath:   cfg.ModelPath,
		LibraryPath: cfg.OnnxLibraryPath,
		InputName:   cfg.ModelInputName,
		OutputName:  cfg.ModelOutputName,
		InputSize:   classifier.InputSize,
	})
	if err != nil {
		log.Error("failed to load model", "path", cfg.ModelPath, "err", err)
		os.Exit(1)
	}
	defer model.Close()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	camera := vision.NewGoCVCamera(cfg.CameraDevice)

	// Собираем сервисы приложения
	appContainer := container.New(container.Deps{
		Classifier:   model,
		Nutrition:    nutrition.NewUSDAClient(cfg.NutritionAPIURL, cfg.NutritionAPIKey, httpClient),
		Recipes:      recipe.NewSpoonacularClient(cfg.RecipeAPIURL, cfg.RecipeAPIKey, httpClient),
		Camera:       camera,
		States:       storage.NewMemoryStateRepository(),
		TickInterval: cfg.TickInterval,
		Logger:       log,
	})

	if cfg.HTTPAddr != "" {
		gin.SetMode(gin.ReleaseMode)
		hub := httpapi.NewHub(log)
		appContainer.Pipeline.Subscribe(hub.Broadcast)

		server := httpapi.NewServer(appContainer.DetectionService, appContainer.Pipeline, hub, log)
		go func() {
			if err := server.Run(ctx, cfg.HTTPAddr); err != nil {
				log.Error("http api stopped", "err", err)
			}
		}()
	}

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer.DetectionService, httpClient, log)
		if err != nil {
			log.Error("failed to create bot", "err", err)
			os.Exit(1)
		}
		go func() {
			if err := bot.Run(ctx); err != nil {
				log.Error("bot stopped", "err", err)
			}
		}()
	}

	desktop := fyneapp.New()
	shell := ui.NewShell(desktop, appContainer.Pipeline, camera, log)

	go func() {
		<-ctx.Done()
		fyne.Do(desktop.Quit)
	}()

	log.Info("produce vision is running")
	shell.Run(ctx)

	if err := appContainer.Pipeline.Stop(context.Background()); err != nil {
		log.Warn("pipeline stopped with error", "err", err)
	}
}
