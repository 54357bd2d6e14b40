package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/keiba-roi-dashboard/internal/shared/config"
	"github.com/radieske/keiba-roi-dashboard/internal/shared/logger"
	"github.com/radieske/keiba-roi-dashboard/internal/shared/metrics"
	"github.com/radieske/keiba-roi-dashboard/internal/sheet-simulator/gen"
)

// Métricas Prometheus do simulador
var (
	exportsServed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sheet_simulator_exports_total",
		Help: "Total de exportações CSV servidas",
	})
	rowsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sheet_simulator_rows",
		Help: "Corridas presentes na planilha simulada",
	})
)

func main() {
	_ = godotenv.Load()
	// portas do simulador são escolhidas pelo SERVICE_NAME
	if os.Getenv("SERVICE_NAME") == "" {
		_ = os.Setenv("SERVICE_NAME", "sheet-simulator")
	}
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(exportsServed, rowsGauge)

	// começa um ano atrás para ter semanas e meses suficientes no dashboard
	sheet := gen.New(time.Now().UnixNano(), time.Now().AddDate(-1, 0, 0), cfg.SimulatorRows)
	rowsGauge.Set(float64(sheet.Len()))

	r := chi.NewRouter()

	// Exportação publicada (o parâmetro t= do cliente é ignorado)
	r.Get("/pub", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte("\ufeff" + sheet.CSV()))
		exportsServed.Inc()
	})

	// Simula o envio de um novo formulário
	r.Post("/rows", func(w http.ResponseWriter, r *http.Request) {
		row := sheet.Append()
		rowsGauge.Set(float64(sheet.Len()))
		log.Info("row appended", zap.Strings("row", row))
		w.WriteHeader(http.StatusCreated)
	})

	msrv := metrics.StartMetricsServer(cfg.MetricsPort, reg, nil)
	log.Info("sheet simulator (metrics) running",
		zap.String("addr", msrv.Addr),
		zap.String("paths", "/healthz,/metrics"),
	)

	publicAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("sheet simulator (public) running",
		zap.String("addr", publicAddr),
		zap.String("paths", "/pub,/rows"),
		zap.Int("rows", sheet.Len()),
	)
	if err := http.ListenAndServe(publicAddr, r); err != nil {
		log.Fatal("public server error", zap.Error(err))
	}
}
