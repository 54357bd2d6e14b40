package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Resultados possíveis de uma recarga
const (
	OutcomeCommitted = "committed"
	OutcomeStale     = "stale"
	OutcomeError     = "error"
)

// Reload agrupa os coletores do ciclo de recarga da planilha
type Reload struct {
	Runs          *prometheus.CounterVec
	RowsSkipped   prometheus.Counter
	Records       prometheus.Gauge
	FetchDuration prometheus.Histogram
}

// NewReload cria e registra os coletores no registry informado
func NewReload(reg prometheus.Registerer) *Reload {
	m := &Reload{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roi_reload_runs_total",
			Help: "recargas da planilha por resultado",
		}, []string{"outcome"}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roi_rows_skipped_total",
			Help: "linhas descartadas na normalização (data inválida ou linha vazia)",
		}),
		Records: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roi_records_loaded",
			Help: "registros de aposta na última recarga efetivada",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "roi_fetch_duration_seconds",
			Help:    "latência da leitura da origem (planilha ou postgres)",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.Runs, m.RowsSkipped, m.Records, m.FetchDuration)
	return m
}

// ObserveFetch registra a duração de uma leitura
func (m *Reload) ObserveFetch(d time.Duration) { m.FetchDuration.Observe(d.Seconds()) }

// Committed registra uma recarga efetivada
func (m *Reload) Committed(records, skipped int) {
	m.Runs.WithLabelValues(OutcomeCommitted).Inc()
	m.Records.Set(float64(records))
	m.RowsSkipped.Add(float64(skipped))
}

func (m *Reload) Stale() { m.Runs.WithLabelValues(OutcomeStale).Inc() }

func (m *Reload) Failed() { m.Runs.WithLabelValues(OutcomeError).Inc() }
