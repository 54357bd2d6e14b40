// Package report executa o pipeline completo de uma carga:
// tabela crua -> apostas normalizadas -> agregados por dia, semana e mês.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/keiba-roi-dashboard/internal/roi/aggregate"
	"github.com/radieske/keiba-roi-dashboard/internal/roi/records"
)

// Report é o resultado imutável de uma carga
type Report struct {
	Records []records.BetRecord
	Summary aggregate.Summary
	Days    []aggregate.Bucket
	Weeks   []aggregate.Bucket
	Months  []aggregate.Bucket
	Stats   records.Stats
	Stake   decimal.Decimal
}

// Build monta o relatório a partir da tabela (cabeçalho + linhas). Não faz I/O.
func Build(table [][]string, opts records.Options) Report {
	recs, st := records.Normalize(table, opts)
	return Report{
		Records: recs,
		Summary: aggregate.Summarize(recs),
		Days:    aggregate.ByDay(recs),
		Weeks:   aggregate.ByWeek(recs),
		Months:  aggregate.ByMonth(recs),
		Stats:   st,
		Stake:   opts.Stake,
	}
}

// Empty indica que nenhuma aposta válida foi carregada
func (r Report) Empty() bool { return len(r.Records) == 0 }

// Week procura o agregado semanal pela chave ISO
func (r Report) Week(key string) (aggregate.Bucket, bool) { return find(r.Weeks, key) }

// Day procura o agregado diário pela chave YYYY-MM-DD
func (r Report) Day(key string) (aggregate.Bucket, bool) { return find(r.Days, key) }

// LatestWeek retorna a chave da semana mais recente ("" sem dados)
func (r Report) LatestWeek() string {
	if len(r.Weeks) == 0 {
		return ""
	}
	return r.Weeks[len(r.Weeks)-1].Key
}

func find(bs []aggregate.Bucket, key string) (aggregate.Bucket, bool) {
	for _, b := range bs {
		if b.Key == key {
			return b, true
		}
	}
	return aggregate.Bucket{}, false
}
