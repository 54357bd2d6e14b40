// Package state é o dono explícito do relatório carregado, da seleção
// (dia ou semana) e da janela de dias exibida no gráfico.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/keiba-roi-dashboard/internal/roi/aggregate"
	"github.com/radieske/keiba-roi-dashboard/internal/roi/records"
	"github.com/radieske/keiba-roi-dashboard/internal/roi/report"
	"github.com/radieske/keiba-roi-dashboard/pkg/contracts/events"
)

var (
	// ErrStaleRun: uma carga mais nova terminou primeiro; o resultado foi descartado
	ErrStaleRun    = errors.New("stale reload run discarded")
	ErrUnknownKind = errors.New("unknown selection kind")
)

// Source fornece a tabela crua (cabeçalho + linhas)
type Source interface {
	Name() string
	Table(ctx context.Context) ([][]string, error)
}

// Notifier é avisado depois que uma carga é efetivada
type Notifier interface {
	NotifyReloaded(ctx context.Context, ev events.SnapshotReloaded) error
}

// Hooks permitem observar o ciclo de uma carga (métricas)
type Hooks struct {
	OnRunStarted func(seq uint64)
	OnFetched    func(d time.Duration)
	OnCommitted  func(rep report.Report)
	OnStale      func(seq uint64)
	OnError      func(err error)
}

// Selection é o período escolhido para a tabela de detalhe
type Selection struct {
	Kind aggregate.Kind `json:"kind"`
	Key  string         `json:"key"`
}

// Detail são as corridas de um dia ou semana
type Detail struct {
	Selection
	Found  bool
	Bucket aggregate.Bucket
}

// Snapshot é a visão consistente do estado num instante
type Snapshot struct {
	Report    report.Report
	Loaded    bool  // houve ao menos uma carga bem-sucedida
	Err       error // erro da última carga efetivada
	RunID     string
	Seq       uint64
	LoadedAt  time.Time
	Selection Selection
	Detail    Detail
	Window    []aggregate.Bucket
	HasPrev   bool
	HasNext   bool
}

type Controller struct {
	src        Source
	opts       records.Options
	windowSize int
	log        *zap.Logger
	hooks      Hooks
	notifiers  []Notifier
	now        func() time.Time

	counter atomic.Uint64

	mu        sync.RWMutex
	rep       report.Report
	loaded    bool
	lastErr   error
	committed uint64
	runID     string
	loadedAt  time.Time
	sel       Selection
	windowEnd int // índice exclusivo em rep.Days
}

func NewController(src Source, opts records.Options, windowSize int, log *zap.Logger) *Controller {
	if windowSize <= 0 {
		windowSize = 30
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		src:        src,
		opts:       opts,
		windowSize: windowSize,
		log:        log,
		now:        time.Now,
	}
}

// SetHooks deve ser chamado antes da primeira carga
func (c *Controller) SetHooks(h Hooks) { c.hooks = h }

// AddNotifier registra um destino para avisos de recarga
func (c *Controller) AddNotifier(n Notifier) { c.notifiers = append(c.notifiers, n) }

// Reload executa busca + pipeline e efetiva o resultado apenas se nenhuma
// carga mais nova já tiver terminado
func (c *Controller) Reload(ctx context.Context) (events.SnapshotReloaded, error) {
	seq := c.counter.Add(1)
	runID := uuid.NewString()
	log := c.log.With(zap.String("run_id", runID), zap.Uint64("seq", seq), zap.String("source", c.src.Name()))
	if c.hooks.OnRunStarted != nil {
		c.hooks.OnRunStarted(seq)
	}

	start := c.now()
	table, err := c.src.Table(ctx)
	if c.hooks.OnFetched != nil {
		c.hooks.OnFetched(c.now().Sub(start))
	}
	if err != nil {
		return events.SnapshotReloaded{}, c.fail(seq, log, err)
	}

	rep := report.Build(table, c.opts)

	c.mu.Lock()
	if seq <= c.committed {
		c.mu.Unlock()
		return events.SnapshotReloaded{}, c.stale(seq, log)
	}
	c.rep = rep
	c.loaded = true
	c.lastErr = nil
	c.committed = seq
	c.runID = runID
	c.loadedAt = c.now().UTC()
	c.sel = Selection{Kind: aggregate.KindWeek, Key: rep.LatestWeek()}
	c.windowEnd = len(rep.Days)
	ev := c.eventLocked()
	c.mu.Unlock()

	log.Info("reload committed",
		zap.Int("records", len(rep.Records)),
		zap.Int("skipped", rep.Stats.Skipped),
	)
	if c.hooks.OnCommitted != nil {
		c.hooks.OnCommitted(rep)
	}
	for _, n := range c.notifiers {
		if err := n.NotifyReloaded(ctx, ev); err != nil {
			log.Warn("reload notification failed", zap.Error(err))
		}
	}
	return ev, nil
}

// fail registra o erro de busca; o relatório anterior continua nas tabelas
func (c *Controller) fail(seq uint64, log *zap.Logger, err error) error {
	c.mu.Lock()
	if seq <= c.committed {
		c.mu.Unlock()
		return c.stale(seq, log)
	}
	c.lastErr = err
	c.committed = seq
	c.mu.Unlock()

	log.Error("reload failed", zap.Error(err))
	if c.hooks.OnError != nil {
		c.hooks.OnError(err)
	}
	return fmt.Errorf("reload: %w", err)
}

func (c *Controller) stale(seq uint64, log *zap.Logger) error {
	log.Warn("discarding stale reload result")
	if c.hooks.OnStale != nil {
		c.hooks.OnStale(seq)
	}
	return ErrStaleRun
}

func (c *Controller) eventLocked() events.SnapshotReloaded {
	s := c.rep.Summary
	ev := events.SnapshotReloaded{
		RunID:       c.runID,
		Seq:         c.committed,
		Source:      c.src.Name(),
		Records:     len(c.rep.Records),
		Skipped:     c.rep.Stats.Skipped,
		TotalStake:  s.TotalStake.String(),
		TotalPayout: s.TotalPayout.String(),
		CompletedAt: c.loadedAt,
	}
	if v, ok := s.ROI.Value(); ok {
		ev.ROI = &v
	}
	if !s.Empty() {
		ev.From = s.From.Format(records.DateLayout)
		ev.To = s.To.Format(records.DateLayout)
	}
	return ev
}

// Select muda o período da tabela de detalhe
func (c *Controller) Select(kind aggregate.Kind, key string) (Detail, error) {
	if _, ok := kind.Key(); !ok {
		return Detail{}, ErrUnknownKind
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel = Selection{Kind: kind, Key: key}
	return c.detailLocked(c.sel), nil
}

// SelectDay seleciona a semana ISO que contém o dia (clique no gráfico)
func (c *Controller) SelectDay(dayKey string) (Detail, error) {
	d, err := time.Parse(records.DateLayout, dayKey)
	if err != nil {
		return Detail{}, fmt.Errorf("invalid day %q: %w", dayKey, err)
	}
	return c.Select(aggregate.KindWeek, aggregate.WeekKey(d))
}

// Detail consulta um período sem alterar a seleção
func (c *Controller) Detail(kind aggregate.Kind, key string) (Detail, error) {
	if _, ok := kind.Key(); !ok {
		return Detail{}, ErrUnknownKind
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.detailLocked(Selection{Kind: kind, Key: key}), nil
}

func (c *Controller) detailLocked(sel Selection) Detail {
	d := Detail{Selection: sel}
	switch sel.Kind {
	case aggregate.KindDay:
		d.Bucket, d.Found = c.rep.Day(sel.Key)
	case aggregate.KindWeek:
		d.Bucket, d.Found = c.rep.Week(sel.Key)
	case aggregate.KindMonth:
		for _, b := range c.rep.Months {
			if b.Key == sel.Key {
				d.Bucket, d.Found = b, true
			}
		}
	}
	return d
}

// Retreat desloca a janela de dias para o passado
func (c *Controller) Retreat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.windowEnd = c.clampLocked(c.windowEnd - c.windowSize)
}

// Advance desloca a janela de dias para o presente
func (c *Controller) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.windowEnd = c.clampLocked(c.windowEnd + c.windowSize)
}

// clampLocked mantém a janela cheia sempre que houver dias suficientes
func (c *Controller) clampLocked(end int) int {
	n := len(c.rep.Days)
	lo := min(c.windowSize, n)
	return max(lo, min(end, n))
}

func (c *Controller) windowLocked() (days []aggregate.Bucket, hasPrev, hasNext bool) {
	end := c.windowEnd
	start := max(0, end-c.windowSize)
	return c.rep.Days[start:end], start > 0, end < len(c.rep.Days)
}

// Snapshot devolve uma cópia consistente do estado para renderização
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	win, prev, next := c.windowLocked()
	return Snapshot{
		Report:    c.rep,
		Loaded:    c.loaded,
		Err:       c.lastErr,
		RunID:     c.runID,
		Seq:       c.committed,
		LoadedAt:  c.loadedAt,
		Selection: c.sel,
		Detail:    c.detailLocked(c.sel),
		Window:    win,
		HasPrev:   prev,
		HasNext:   next,
	}
}

// Healthy reporta o erro da última carga efetivada (usado em /healthz)
func (c *Controller) Healthy(context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}
