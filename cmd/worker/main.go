package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/momentmaker/internal/analyze"
	"github.com/your-org/momentmaker/internal/config"
	"github.com/your-org/momentmaker/internal/faces"
	"github.com/your-org/momentmaker/internal/models"
	"github.com/your-org/momentmaker/internal/observability"
	"github.com/your-org/momentmaker/internal/queue"
	"github.com/your-org/momentmaker/internal/storage"
	"github.com/your-org/momentmaker/internal/vision"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting momentmaker analysis worker",
		"workers", cfg.Vision.WorkerCount,
		"cpu_cores", runtime.NumCPU(),
	)

	// Initialize ONNX Runtime
	if err := vision.InitRuntime(); err != nil {
		slog.Error("init onnx runtime", "error", err)
		os.Exit(1)
	}
	defer vision.DestroyRuntime()

	// Connect to Postgres
	db, err := storage.NewPostgresStore(cfg.Database)
	if err != nil {
		slog.Error("connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to MinIO
	minioStore, err := storage.NewMinIOStore(cfg.MinIO)
	if err != nil {
		slog.Error("connect to minio", "error", err)
		os.Exit(1)
	}

	// Connect to NATS
	producer, err := queue.NewProducer(cfg.NATS.URL)
	if err != nil {
		slog.Error("connect to nats producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	if err := producer.EnsureStreams(context.Background()); err != nil {
		slog.Warn("ensure nats streams", "error", err)
	}

	// Face analysis capability
	visionSvc, err := vision.NewService(cfg.Vision, db, minioStore)
	if err != nil {
		slog.Error("init vision service", "error", err)
		os.Exit(1)
	}
	defer visionSvc.Close()

	matcher := faces.NewMatcher(visionSvc, db, minioStore)
	index := faces.NewIndex(db)
	analyzer := analyze.NewAnalyzer(cfg.Vision, db, minioStore, producer, visionSvc, matcher, index)
	jobRunner := vision.NewJobRunner(visionSvc, db, minioStore, producer)

	slog.Info("analysis pipeline initialized")

	consumer, err := queue.NewConsumer(cfg.NATS.URL)
	if err != nil {
		slog.Error("create consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = consumer.ConsumeUploads(ctx, "analyze-workers", func(ctx context.Context, msg jetstream.Msg) error {
		var up models.UploadSignal
		if err := json.Unmarshal(msg.Data(), &up); err != nil {
			slog.Error("unmarshal upload signal", "error", err)
			return nil // Don't retry on unmarshal errors
		}
		return analyzer.HandleUpload(ctx, up)
	}, cfg.Vision.WorkerCount)
	if err != nil {
		slog.Error("start upload consumer", "error", err)
		os.Exit(1)
	}

	err = consumer.ConsumeJobTasks(ctx, "detect-workers", func(ctx context.Context, msg jetstream.Msg) error {
		var task models.JobTask
		if err := json.Unmarshal(msg.Data(), &task); err != nil {
			slog.Error("unmarshal job task", "error", err)
			return nil
		}
		// Run reports failures through the job row and completion signal;
		// a redelivered task would just fail the job twice.
		_ = jobRunner.Run(ctx, task)
		return nil
	}, 1)
	if err != nil {
		slog.Error("start job task consumer", "error", err)
		os.Exit(1)
	}

	err = consumer.ConsumeJobCompletions(ctx, "index-workers", func(ctx context.Context, msg jetstream.Msg) error {
		var completion models.JobCompletion
		if err := json.Unmarshal(msg.Data(), &completion); err != nil {
			slog.Error("unmarshal job completion", "error", err)
			return nil
		}
		return analyzer.HandleJobCompletion(ctx, completion)
	}, 1)
	if err != nil {
		slog.Error("start job completion consumer", "error", err)
		os.Exit(1)
	}

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		slog.Info("worker metrics listening", "addr", ":8082")
		if err := http.ListenAndServe(":8082", mux); err != nil {
			slog.Error("metrics server error", "error", err)
		}
	}()

	// Periodically report queue depth
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				depth, err := producer.QueueDepth(ctx)
				if err == nil {
					observability.QueueDepth.Set(float64(depth))
				}
			}
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down worker...")
	cancel()
	time.Sleep(2 * time.Second)
	slog.Info("worker stopped")
}
