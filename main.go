package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"forgedocs/features/ask"
	"forgedocs/features/document"
	"forgedocs/internal/adapter/gemini"
	"forgedocs/internal/adapter/ocr"
	"forgedocs/internal/answer"
	"forgedocs/internal/assemble"
	"forgedocs/internal/config"
	"forgedocs/internal/extract"
	"forgedocs/internal/logger"
	"forgedocs/internal/middleware"
	"forgedocs/internal/rank"
	"forgedocs/internal/text"
	"forgedocs/internal/worker"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/nsqio/go-nsq"
)

func main() {
	// Initialize structured logger with correlation id propagation
	handler := logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(slog.New(handler))

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. Database Connection
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("failed to open db connection", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Retry connection
	retryDelay := time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second
	for i := 0; i < cfg.BootstrapRetryAttempts; i++ {
		if err := db.Ping(); err == nil {
			break
		}
		slog.Warn("failed to ping db, retrying...", "attempt", i+1, "max_attempts", cfg.BootstrapRetryAttempts)
		time.Sleep(retryDelay)
	}

	if err := db.Ping(); err != nil {
		slog.Error("failed to ping db after retries", "error", err)
		os.Exit(1)
	}

	// 3. Run Migrations
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		slog.Error("failed to create migration driver", "error", err)
		os.Exit(1)
	}

	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationPath, "postgres", driver)
	if err != nil {
		slog.Error("failed to create migration instance", "error", err)
		os.Exit(1)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations applied successfully")

	// 4. NSQ Producer
	nsqCfg := nsq.NewConfig()
	nsqProducer, err := nsq.NewProducer(cfg.NSQDHost, nsqCfg)
	if err != nil {
		slog.Error("failed to create NSQ producer", "error", err)
		os.Exit(1)
	}

	// Pre-create topics to avoid consumer startup errors.
	// NSQ creates topics lazily on publish, but consumers querying lookupd
	// will fail 404 until then, so we hit the nsqd http api explicitly.
	nsqHTTPHost := "nsqd"
	if host, _, err := net.SplitHostPort(cfg.NSQDHost); err == nil && host != "" {
		nsqHTTPHost = host
	}
	go func() {
		// Wait for nsqd to be ready
		time.Sleep(2 * time.Second)
		for _, topic := range []string{config.TopicIngestTask, config.TopicDocumentIngested} {
			url := fmt.Sprintf("http://%s:4151/topic/create?topic=%s", nsqHTTPHost, topic)
			resp, err := http.Post(url, "application/json", nil)
			if err != nil {
				slog.Warn("failed to pre-create topic", "error", err, "topic", topic)
				continue
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("topic pre-created successfully", "topic", topic)
			}
		}
	}()

	// 5. Extraction pipeline
	ocrClient := ocr.NewClient(cfg.OCRURL, time.Duration(cfg.OCRTimeoutSeconds)*time.Second)
	extractors := extract.NewRegistry(ocrClient)
	chunker := text.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap, cfg.MinChunkSize)

	// Feature: Document
	docRepo := document.NewPostgresRepo(db)
	docService := document.NewService(docRepo, extractors, chunker, nsqProducer)
	docHandler := document.NewHandler(docService, cfg.UploadDir, cfg.MaxUploadSizeMB)

	// Answer synthesis: Gemini when configured, topic fallback otherwise
	var generator answer.Generator
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			slog.Warn("failed to create gemini client, answers will use fallback only", "error", err)
		} else {
			generator = client
		}
	} else {
		slog.Warn("GEMINI_API_KEY not set, answers will use fallback only")
	}
	synthesizer := answer.NewSynthesizer(generator, answer.DefaultTopics())

	// Feature: Ask
	scorer := rank.NewScorer(rank.DefaultOptions())
	assembler := assemble.New(cfg.ContextBudget)
	askService := ask.NewService(docRepo, scorer, assembler, synthesizer, cfg.SearchTopK, cfg.RecentFallback)
	askHandler := ask.NewHandler(askService)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Owner-ID")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	http.Handle("POST /documents", middleware.CorrelationID(enableCORS(docHandler.Upload)))
	http.Handle("GET /documents", middleware.CorrelationID(enableCORS(docHandler.List)))
	http.Handle("DELETE /documents/{id}", middleware.CorrelationID(enableCORS(docHandler.Delete)))
	http.Handle("POST /documents/{id}/resync", middleware.CorrelationID(enableCORS(docHandler.ReSync)))

	http.Handle("POST /ask", middleware.CorrelationID(enableCORS(askHandler.Ask)))

	// Worker (Ingest Consumer)
	llmTimeout := time.Duration(cfg.LLMTimeoutSeconds) * time.Second
	ingestConsumer := worker.NewIngestConsumer(docService, llmTimeout)

	consumer, err := nsq.NewConsumer(config.TopicIngestTask, "backend", nsq.NewConfig())
	if err != nil {
		slog.Error("failed to create NSQ consumer", "error", err)
	} else {
		consumer.AddHandler(nsq.HandlerFunc(func(m *nsq.Message) error {
			return ingestConsumer.HandleMessage(m)
		}))
		if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
			slog.Error("failed to connect to NSQLookupd", "error", err)
		} else {
			slog.Info("NSQ ingest consumer connected")
		}
	}

	// 6. Start Server
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	slog.Info("server starting", "port", cfg.ServerPort)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.ServerPort), nil); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
