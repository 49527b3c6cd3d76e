package httpapi

import (
	"context"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	app "produce-vision/internal/application"
	"produce-vision/internal/domain/entity"
)

// Server HTTP API поверх конвейера и сервиса распознавания
type Server struct {
	engine   *gin.Engine
	detector *app.DetectionService
	pipeline *app.Pipeline
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

type detectionResponse struct {
	Label          string                 `json:"label"`
	Class          string                 `json:"class"`
	Confidence     float32                `json:"confidence"`
	NutritionFound bool                   `json:"nutrition_found"`
	Nutrition      entity.NutritionRecord `json:"nutrition"`
	Recipes        entity.RecipeList      `json:"recipes"`
}

func NewServer(detector *app.DetectionService, pipeline *app.Pipeline, hub *Hub, logger *slog.Logger) *Server {
	s := &Server{
		engine:   gin.New(),
		detector: detector,
		pipeline: pipeline,
		hub:      hub,
		logger:   logger,
	}

	// Загрузка изображений до 10MB
	s.engine.MaxMultipartMemory = 10 << 20
	s.engine.Use(gin.Recovery(), requestLogger(logger))

	s.engine.GET("/health", s.health)
	s.engine.GET("/state", s.state)
	s.engine.GET("/ws", s.stream)

	pipelineGroup := s.engine.Group("/pipeline")
	{
		pipelineGroup.POST("/start", s.start)
		pipelineGroup.POST("/stop", s.stop)
	}

	s.engine.POST("/detect/image", s.detectImage)

	return s
}

// Handler возвращает http.Handler для тестов и встраивания
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run слушает addr до отмены ctx
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http api listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) state(c *gin.Context) {
	st, err := s.pipeline.State(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to read state", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "state unavailable"})
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) start(c *gin.Context) {
	if err := s.pipeline.Start(c.Request.Context()); err != nil {
		s.logger.Error("failed to start pipeline", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "camera unavailable"})
		return
	}
	s.state(c)
}

func (s *Server) stop(c *gin.Context) {
	if err := s.pipeline.Stop(c.Request.Context()); err != nil {
		s.logger.Warn("pipeline stopped with error", "err", err)
	}
	s.state(c)
}

func (s *Server) detectImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no image file provided, use 'image' as the form field name"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image format, supported: JPEG, PNG"})
		return
	}
	s.logger.Debug("image received", "file", header.Filename, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	detection, err := s.detector.Detect(c.Request.Context(), img)
	if err != nil {
		s.logger.Error("detection failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "detection failed"})
		return
	}

	c.JSON(http.StatusOK, detectionResponse{
		Label:          detection.LabelText(),
		Class:          detection.Prediction.Label.Name,
		Confidence:     detection.Prediction.Confidence,
		NutritionFound: detection.NutritionErr == nil && len(detection.Nutrition) > 0,
		Nutrition:      detection.Nutrition,
		Recipes:        detection.Recipes,
	})
}

// stream отдаёт текущее состояние и дальше каждое новое через Hub
func (s *Server) stream(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	st, err := s.pipeline.State(c.Request.Context())
	if err == nil {
		err = conn.WriteJSON(st)
	}
	if err != nil {
		_ = conn.Close()
		return
	}

	s.hub.Register(conn)
	defer s.hub.Unregister(conn)

	// Входящие сообщения не нужны, читаем до закрытия соединения
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
