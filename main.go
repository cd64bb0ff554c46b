package main

import (
	"context"
	"flag"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"clipfinder/config"
	"clipfinder/handlers"
	"clipfinder/internal/clips"
	"clipfinder/internal/ffmpeg"
	"clipfinder/internal/ingest"
	"clipfinder/internal/library"
	"clipfinder/internal/store"
	"clipfinder/internal/summarize"
	"clipfinder/internal/transcribe"
	"clipfinder/internal/watcher"
	"clipfinder/internal/worker"
	"clipfinder/middleware"
	"clipfinder/pkg/executor"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.EnsureDirs(); err != nil {
		log.Fatalf("Failed to create storage dirs: %v", err)
	}

	logger := config.NewLogger(cfg.Logging.Level)

	lib, err := store.OpenLibrary(cfg.Paths.Database)
	if err != nil {
		logger.Fatalf("Failed to open library database: %v", err)
	}
	defer lib.Close()

	media := store.NewMediaStore(cfg.Paths.Uploads, cfg.Paths.Processed)
	transcripts := store.NewTranscriptStore(cfg.Paths.Transcripts)
	locks := store.NewKeyedLocks()

	exec := executor.New()
	ff := ffmpeg.New(exec)
	transcriber := transcribe.NewWhisper(cfg.Whisper, exec, ff, logger)
	downloader := ingest.NewYtDlpDownloader(cfg.YtDlp.BinaryPath, exec, logger)
	summarizer := summarize.NewGemini(cfg.Gemini.APIKeys, cfg.Gemini.Model, logger)

	pool := worker.NewDispatcher(cfg.Performance.MaxWorkers, cfg.Performance.JobQueueSize, logger)
	pool.Run()
	defer pool.Stop()

	ingestor := ingest.NewManager(media, transcripts, lib, locks, ff, transcriber, downloader, logger)
	libraryMgr := library.NewManager(media, transcripts, lib, logger)
	clipEngine := clips.NewEngine(media, transcripts, lib, locks, ff, summarizer, pool, logger)

	if cfg.Watcher.Enabled {
		w, err := watcher.New(cfg.Watcher.Dir, ingestor, logger)
		if err != nil {
			logger.Fatalf("Failed to start inbox watcher: %v", err)
		}
		go func() {
			if err := w.Start(context.Background()); err != nil && err != context.Canceled {
				logger.Errorf("Inbox watcher stopped: %v", err)
			}
		}()
	}

	h := handlers.NewApplicationHandler(logger, ingestor, libraryMgr, clipEngine)

	app := fiber.New(fiber.Config{
		BodyLimit: 500 * 1024 * 1024, // uploads up to 500MB
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.RequestLogger(logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "Clip extraction API is healthy",
		})
	})

	api := app.Group("/api")
	api.Post("/upload", h.UploadVideo)
	api.Post("/process-url", h.ProcessURL)
	api.Post("/extract-clip", h.ExtractClip)
	api.Get("/history", h.GetHistory)
	api.Get("/transcript/:filename", h.GetTranscript)
	api.Get("/ingests/:id", h.GetIngestStatus)
	api.Delete("/video/:filename", h.DeleteVideo)

	// Media bytes are filename-addressed static resources.
	app.Static("/static/uploads", cfg.Paths.Uploads)
	app.Static("/static/processed", cfg.Paths.Processed)

	logger.Infof("Starting clip extraction API on %s", cfg.Server.Addr)
	if err := app.Listen(cfg.Server.Addr); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}
