// Package aggregate agrupa apostas por dia, semana ISO e mês e calcula o retorno.
package aggregate

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/keiba-roi-dashboard/internal/roi/records"
)

// Bucket agrega as apostas de um período
type Bucket struct {
	Key         string
	From        time.Time // primeiro dia com aposta no período
	To          time.Time // último dia com aposta no período
	RaceCount   int
	TotalStake  decimal.Decimal
	TotalPayout decimal.Decimal
	ROI         Ratio
	Records     []records.BetRecord
}

// Summary é o agregado de todas as apostas (visão anual)
type Summary struct {
	RaceCount   int
	TotalStake  decimal.Decimal
	TotalPayout decimal.Decimal
	ROI         Ratio
	From        time.Time
	To          time.Time
}

// Empty indica que não houve nenhuma aposta válida
func (s Summary) Empty() bool { return s.RaceCount == 0 }

// Group agrupa as apostas pela chave e devolve os períodos em ordem crescente.
// Períodos sem aposta não aparecem.
func Group(recs []records.BetRecord, key KeyFunc) []Bucket {
	idx := make(map[string]int)
	var out []Bucket

	for _, r := range recs {
		k := key(r.Date)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, Bucket{
				Key:         k,
				From:        r.Date,
				To:          r.Date,
				TotalStake:  decimal.Zero,
				TotalPayout: decimal.Zero,
			})
		}
		b := &out[i]
		b.RaceCount++
		b.TotalStake = b.TotalStake.Add(r.Stake)
		b.TotalPayout = b.TotalPayout.Add(r.Payout)
		b.Records = append(b.Records, r)
		if r.Date.Before(b.From) {
			b.From = r.Date
		}
		if r.Date.After(b.To) {
			b.To = r.Date
		}
	}

	for i := range out {
		out[i].ROI = RatioOf(out[i].TotalPayout, out[i].TotalStake)
	}

	// chaves com dígitos de largura fixa: ordem lexicográfica == cronológica
	slices.SortFunc(out, func(a, b Bucket) int { return strings.Compare(a.Key, b.Key) })
	return out
}

func ByDay(recs []records.BetRecord) []Bucket   { return Group(recs, DayKey) }
func ByWeek(recs []records.BetRecord) []Bucket  { return Group(recs, WeekKey) }
func ByMonth(recs []records.BetRecord) []Bucket { return Group(recs, MonthKey) }

// Summarize agrega todas as apostas num único total
func Summarize(recs []records.BetRecord) Summary {
	s := Summary{TotalStake: decimal.Zero, TotalPayout: decimal.Zero}
	for i, r := range recs {
		s.RaceCount++
		s.TotalStake = s.TotalStake.Add(r.Stake)
		s.TotalPayout = s.TotalPayout.Add(r.Payout)
		if i == 0 || r.Date.Before(s.From) {
			s.From = r.Date
		}
		if i == 0 || r.Date.After(s.To) {
			s.To = r.Date
		}
	}
	s.ROI = RatioOf(s.TotalPayout, s.TotalStake)
	return s
}

// Filter devolve as apostas cujo período (dia, semana ou mês) tem a chave informada
func Filter(recs []records.BetRecord, kind Kind, key string) []records.BetRecord {
	kf, ok := kind.Key()
	if !ok {
		return nil
	}
	var out []records.BetRecord
	for _, r := range recs {
		if kf(r.Date) == key {
			out = append(out, r)
		}
	}
	return out
}
