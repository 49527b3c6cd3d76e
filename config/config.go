package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ModelPath       string
	OnnxLibraryPath string
	ModelInputName  string
	ModelOutputName string

	CameraDevice int
	TickInterval time.Duration

	NutritionAPIURL string
	NutritionAPIKey string
	RecipeAPIURL    string
	RecipeAPIKey    string
	HTTPTimeout     time.Duration

	HTTPAddr      string // пусто: HTTP API выключен
	TelegramToken string // пусто: бот выключен
	LogLevel      string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		ModelPath:       getEnv("MODEL_PATH", "models/produce_classifier.onnx"),
		OnnxLibraryPath: os.Getenv("ONNXRUNTIME_LIB"),
		ModelInputName:  getEnv("MODEL_INPUT_NAME", "input"),
		ModelOutputName: getEnv("MODEL_OUTPUT_NAME", "output"),
		NutritionAPIURL: os.Getenv("USDA_API_URL"),
		NutritionAPIKey: getEnv("USDA_API_KEY", "DEMO_KEY"),
		RecipeAPIURL:    os.Getenv("SPOONACULAR_API_URL"),
		RecipeAPIKey:    os.Getenv("SPOONACULAR_API_KEY"),
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		TelegramToken:   os.Getenv("TELEGRAM_TOKEN"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.CameraDevice, err = getInt("CAMERA_DEVICE", 0); err != nil {
		return nil, err
	}
	if cfg.TickInterval, err = getDuration("TICK_INTERVAL", time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
