package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/danielpatrickdp/trajeval/internal/codec"
	"github.com/danielpatrickdp/trajeval/internal/config"
	"github.com/danielpatrickdp/trajeval/internal/logging"
	"github.com/danielpatrickdp/trajeval/internal/metrics"
)

// #region main
func main() {
	addr := flag.String("addr", envOr("EVALD_ADDR", "localhost:50061"), "gRPC listen address")
	metricsAddr := flag.String("metrics-addr", envOr("EVALD_METRICS_ADDR", ":2112"), "Prometheus listen address, empty disables")
	configPath := flag.String("config", envOr("TRAJEVAL_CONFIG", ""), "YAML config file")
	logLevel := flag.String("log-level", envOr("EVALD_LOG_LEVEL", "info"), "debug|info|warn|error")
	logJSON := flag.Bool("log-json", os.Getenv("EVALD_LOG_JSON") == "1", "JSON log output")
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("invalid log level: %v", err)
	}
	logger := logging.NewLogger(logging.LoggerConfig{Level: level, JSON: *logJSON})

	// 1. Config: defaults, then file, then environment
	cfg := config.Default()
	if *configPath != "" {
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	if cfg, err = config.ApplyEnv(cfg, os.LookupEnv); err != nil {
		log.Fatalf("invalid environment: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// 2. Metrics
	var recorder metrics.Recorder = metrics.NopRecorder{}
	if *metricsAddr != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prom, err := metrics.NewPrometheusRecorder(registry)
		if err != nil {
			log.Fatalf("failed to create metrics recorder: %v", err)
		}
		srv, err := metrics.StartPrometheusServer(*metricsAddr, registry)
		if err != nil {
			log.Fatalf("failed to start metrics endpoint: %v", err)
		}
		defer srv.Close()
		recorder = prom
		log.Printf("metrics on %s/metrics", srv.Addr)
	}

	// 3. gRPC
	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("failed to listen on %s: %v", *addr, err)
	}
	server := grpc.NewServer()
	codec.RegisterEvaluatorServer(server, codec.NewServer(cfg, logger, recorder))
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(server, healthSrv)
	healthSrv.SetServingStatus(codec.ServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(server)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		healthSrv.Shutdown()
		done := make(chan struct{})
		go func() {
			server.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			server.Stop()
		}
	}()

	log.Printf("evaluator ready on %s (namespace %q, pass threshold %.2f)", lis.Addr(), cfg.NamespacePrefix, cfg.Gate.PassThreshold)
	if err := server.Serve(lis); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
// #endregion helpers
