package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/clarencejohnson126/angebotsagent/internal/async"
	"github.com/clarencejohnson126/angebotsagent/internal/common"
	"github.com/clarencejohnson126/angebotsagent/internal/core"
	"github.com/clarencejohnson126/angebotsagent/internal/export"
	"github.com/clarencejohnson126/angebotsagent/internal/ingest"
	"github.com/clarencejohnson126/angebotsagent/internal/llm"
	llmopenai "github.com/clarencejohnson126/angebotsagent/internal/llm/openai"
	"github.com/clarencejohnson126/angebotsagent/internal/repository"
	"github.com/clarencejohnson126/angebotsagent/internal/server"
	"github.com/clarencejohnson126/angebotsagent/internal/textlayer"
)

func main() {
	configPath := flag.String("config", "", "optional config file")
	flag.Parse()

	cfg, err := common.LoadConfigFile(*configPath)
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(2)
	}
	logger, err := common.NewLogger(cfg.Log)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer server.CloseDB(db, logger)
	if err := server.PingDB(ctx, db, logger, cfg.Database.DialTimeout); err != nil {
		logger.Fatal("database health failed", zap.Error(err))
	}
	logger.Info("database health ok", zap.String("driver", cfg.Database.Driver))

	docs := repository.NewDocumentRepository(db, logger)
	jobs := repository.NewExtractJobRepository(db, logger)
	ing := ingest.NewFSIngestor(docs, logger)
	loader := textlayer.NewLoader(textlayer.Config{
		PDFBackend:   cfg.Extract.PDFBackend,
		PDFToTextBin: cfg.Extract.PDFToTextBin,
	}, nil, logger)

	var extractor llm.PositionExtractor
	if cfg.LLMEnabled() {
		client := llmopenai.NewClient(llmopenai.ConfigFrom(cfg.LLM), logger)
		extractor = client
		logger.Info("llm fallback enabled", zap.String("model", client.ModelName()))
	} else {
		logger.Info("llm fallback disabled: OPENAI_API_KEY not set")
	}

	proc := core.NewProcessor(core.ProcessorConfig{
		Loader:      loader,
		Ingestor:    ing,
		Documents:   docs,
		Jobs:        jobs,
		LLM:         extractor,
		Workers:     cfg.Extract.Workers,
		TenderPages: cfg.Extract.TenderPages,
		Timeout:     3 * time.Minute,
	}, logger)

	// gRPC
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(server.UnaryInterceptor(logger)))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	reflection.Register(grpcServer)
	server.Register(grpcServer, server.NewTakeoffService(proc, jobs, export.NewService(jobs, logger), ing, logger))
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(server.ServiceName, healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Fatal("listen failed", zap.String("addr", cfg.Server.GRPCAddr), zap.Error(err))
	}
	go func() {
		logger.Info("grpc serving", zap.String("addr", cfg.Server.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc serve", zap.Error(err))
			stop()
		}
	}()

	// Metrics
	var metricsSrv *http.Server
	if cfg.Server.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: cfg.Server.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("metrics serving", zap.String("addr", cfg.Server.MetricsAddr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics serve", zap.Error(err))
			}
		}()
	}

	// Inbox watcher
	var queue *async.ProcessorQueue
	if cfg.Watch.Dir != "" {
		queue = async.NewProcessorQueue(proc, logger,
			async.WithWorkers(cfg.Extract.Workers),
			async.WithQueueSize(64),
			async.WithProcessTimeout(3*time.Minute),
		)
		paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       []string{cfg.Watch.Dir},
			InitialScan: true,
			Debounce:    cfg.Watch.Debounce,
			SkipHidden:  true,
			Logger:      logger,
		})
		if err != nil {
			logger.Fatal("watcher start failed", zap.String("dir", cfg.Watch.Dir), zap.Error(err))
		}
		logger.Info("watching inbox", zap.String("dir", cfg.Watch.Dir))
		go func() {
			for p := range paths {
				if err := queue.Enqueue(ctx, async.Job{Path: p, SubmittedAt: time.Now()}); err != nil {
					logger.Warn("inbox enqueue failed", zap.String("path", p), zap.Error(err))
				}
			}
		}()
		go func() {
			for err := range errs {
				logger.Warn("watcher error", zap.Error(err))
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")
	hs.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if queue != nil {
		queue.Shutdown(shutdownCtx)
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}

	stopped := make(chan struct{})
	go func() { grpcServer.GracefulStop(); close(stopped) }()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		grpcServer.Stop()
	}
	logger.Info("stopped")
}
