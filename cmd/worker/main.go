package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/hapticstudio/worker/internal/client"
	"github.com/hapticstudio/worker/internal/config"
	"github.com/hapticstudio/worker/internal/dsp"
	"github.com/hapticstudio/worker/internal/handler"
	"github.com/hapticstudio/worker/internal/haptic"
	"github.com/hapticstudio/worker/internal/media"
	"github.com/hapticstudio/worker/internal/model"
	"github.com/hapticstudio/worker/internal/service"
	"github.com/hapticstudio/worker/internal/worker"
	"github.com/hapticstudio/worker/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Redis backs the task queue
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Shared clients, created once and used concurrently by all jobs
	storageClient, err := client.NewS3Client(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to init storage client: %v", err)
	}
	statusClient := client.NewStatusClient(&cfg.StatusAPI)

	// Pipeline
	audioExtractor := media.NewFFmpegExtractor(&cfg.Media)
	featureExtractor := dsp.NewExtractor()
	synthesizer := haptic.NewSynthesizer(cfg.Haptic)
	hapticService := service.NewHapticService(
		storageClient,
		audioExtractor,
		featureExtractor,
		synthesizer,
		cfg.Storage.InputBucket,
		cfg.Storage.OutputBucket,
	)

	validate := validator.New()
	processHandler := handler.NewProcessHandler(hapticService, validate)

	// Fiber app: health check plus a manual trigger for the pipeline
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	app.Get("/", handler.Health)
	app.Post("/process", processHandler.Process)

	// Start the queue worker server
	go startWorkerServer(cfg, hapticService, statusClient)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	addr := ":" + cfg.Server.Port
	log.Printf("Haptic worker listening on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// startWorkerServer runs the queue consumer: a bounded pool of job handlers
// fed from Redis, so transport delivery timing is decoupled from job
// execution and in-flight work is bounded by Concurrency.
func startWorkerServer(cfg *config.Config, hapticService *service.HapticService, statusClient client.StatusReporter) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				cfg.Worker.Queue: 10,
			},
		},
	)

	hapticWorker := worker.NewHapticWorker(hapticService, statusClient)

	mux := asynq.NewServeMux()
	mux.HandleFunc(model.TaskTypeHapticGenerate, hapticWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Queue worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return response.Error(c, code, response.CodeServiceError, message, nil)
}
