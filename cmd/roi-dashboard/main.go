package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	httpapi "github.com/radieske/keiba-roi-dashboard/internal/dashboard/http"
	"github.com/radieske/keiba-roi-dashboard/internal/dashboard/publisher"
	"github.com/radieske/keiba-roi-dashboard/internal/dashboard/pubsub"
	"github.com/radieske/keiba-roi-dashboard/internal/dashboard/state"
	"github.com/radieske/keiba-roi-dashboard/internal/dashboard/ws"
	"github.com/radieske/keiba-roi-dashboard/internal/ingest/repo"
	"github.com/radieske/keiba-roi-dashboard/internal/ingest/sheet"
	"github.com/radieske/keiba-roi-dashboard/internal/roi/records"
	"github.com/radieske/keiba-roi-dashboard/internal/roi/report"
	"github.com/radieske/keiba-roi-dashboard/internal/shared/cache"
	"github.com/radieske/keiba-roi-dashboard/internal/shared/config"
	"github.com/radieske/keiba-roi-dashboard/internal/shared/db"
	"github.com/radieske/keiba-roi-dashboard/internal/shared/logger"
	"github.com/radieske/keiba-roi-dashboard/internal/shared/metrics"
)

func main() {
	// .env é opcional
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting service",
		zap.String("source", cfg.Source),
		zap.Int64("stake_per_race", cfg.StakePerRace),
		zap.Int("day_window", cfg.DayWindowSize),
	)

	// grafias extras do cabeçalho
	syn := records.DefaultSynonyms()
	if cfg.HeaderSynonymsFile != "" {
		if syn, err = records.LoadSynonyms(cfg.HeaderSynonymsFile); err != nil {
			log.Fatal("failed to load header synonyms", zap.Error(err))
		}
	}

	// origem dos registros
	var (
		src state.Source
		pg  interface{ PingContext(context.Context) error }
	)
	switch cfg.Source {
	case config.SourcePostgres:
		conn, err := db.ConnectPostgres(cfg.PostgresDSN)
		if err != nil {
			log.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer conn.Close()
		log.Info("postgres connected")
		src, pg = &repo.SheetMirror{DB: conn}, conn
	case config.SourceSheet:
		src = sheet.New(cfg.SheetCSVURL, cfg.FetchTimeout)
	default:
		log.Fatal("unknown ROI_SOURCE", zap.String("source", cfg.Source))
	}

	// métricas
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rm := metrics.NewReload(reg)

	ctrl := state.NewController(src, records.Options{
		Stake:    decimal.NewFromInt(cfg.StakePerRace),
		Synonyms: syn,
	}, cfg.DayWindowSize, log)
	ctrl.SetHooks(state.Hooks{
		OnFetched:   rm.ObserveFetch,
		OnCommitted: func(r report.Report) { rm.Committed(len(r.Records), r.Stats.Skipped) },
		OnStale:     func(uint64) { rm.Stale() },
		OnError:     func(error) { rm.Failed() },
	})

	hub := ws.NewHub(allowOrigin(cfg.CORSOrigins), log, reg)

	// avisos de recarga: via Redis quando houver várias instâncias, senão direto no hub
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = cache.ConnectRedis(cfg.RedisAddr)
		if err != nil {
			log.Fatal("failed to connect redis", zap.Error(err))
		}
		defer rdb.Close()
		log.Info("redis connected", zap.String("channel", cfg.RedisPubSubChannel))
		ctrl.AddNotifier(pubsub.NewRedisBroadcaster(rdb, cfg.RedisPubSubChannel))
		ws.StartRedisSubscriber(ctx, rdb, cfg.RedisPubSubChannel, hub, log)
	} else {
		ctrl.AddNotifier(hub)
	}

	if cfg.KafkaBrokers != "" {
		pub := publisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.TopicSnapshotReloaded, cfg.Env, log)
		defer pub.Close()
		ctrl.AddNotifier(pub)
		log.Info("kafka publisher ready", zap.String("topic", cfg.TopicSnapshotReloaded))
	}

	// healthz: última carga + dependências opcionais
	health := func(ctx context.Context) error {
		if err := ctrl.Healthy(ctx); err != nil {
			return fmt.Errorf("last reload: %w", err)
		}
		if pg != nil {
			if err := pg.PingContext(ctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}
	msrv := metrics.StartMetricsServer(cfg.MetricsPort, reg, health)
	log.Info("metrics/health server starting", zap.String("addr", msrv.Addr))

	// primeira carga; falha não derruba o serviço, aparece no dashboard
	if _, err := ctrl.Reload(ctx); err != nil {
		log.Warn("initial reload failed", zap.Error(err))
	}

	api := &httpapi.Server{Ctrl: ctrl, WS: hub.HandleWS, Log: log, CORSOrigins: cfg.CORSOrigins}
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("dashboard listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = msrv.Shutdown(shutdownCtx)
	log.Info("service stopped")
}

// allowOrigin aplica a mesma lista de origens do CORS ao WebSocket
func allowOrigin(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		o := r.Header.Get("Origin")
		return o == "" || slices.Contains(origins, "*") || slices.Contains(origins, o)
	}
}
