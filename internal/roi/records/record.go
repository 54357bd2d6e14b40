// Package records converte as linhas cruas da planilha em apostas tipadas.
package records

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout é o formato de exibição e de chave diária
const DateLayout = "2006-01-02"

// BetRecord é uma aposta (uma linha da planilha). Imutável após Normalize.
type BetRecord struct {
	Date           time.Time // dia civil, meia-noite UTC
	Race           string
	Horse          string // cavalo escolhido (honmei)
	FavoriteRank   *int   // nil quando a célula está vazia ou inválida
	FinishPosition *int
	Stake          decimal.Decimal
	Payout         decimal.Decimal
}

// DateString formata a data como YYYY-MM-DD
func (r BetRecord) DateString() string { return r.Date.Format(DateLayout) }

// Options parametriza a normalização
type Options struct {
	Stake    decimal.Decimal // valor fixo apostado por corrida
	Synonyms Synonyms        // nil usa DefaultSynonyms
}

// Stats conta as linhas lidas e as descartadas (data inválida ou linha vazia)
type Stats struct {
	Rows    int
	Skipped int
}

// Normalize converte a tabela (cabeçalho + linhas) em apostas ordenadas por data.
// A ordenação é estável: apostas do mesmo dia mantêm a ordem da planilha.
func Normalize(table [][]string, opts Options) ([]BetRecord, Stats) {
	var st Stats
	if len(table) < 2 {
		return nil, st
	}

	syn := opts.Synonyms
	if syn == nil {
		syn = DefaultSynonyms()
	}
	h := NewHeader(table[0], syn)

	out := make([]BetRecord, 0, len(table)-1)
	for _, row := range table[1:] {
		st.Rows++
		rec, ok := h.record(row, opts.Stake)
		if !ok {
			st.Skipped++
			continue
		}
		out = append(out, rec)
	}

	slices.SortStableFunc(out, func(a, b BetRecord) int { return a.Date.Compare(b.Date) })
	return out, st
}

// record monta a aposta de uma linha; false significa "pular", não erro
func (h Header) record(row []string, stake decimal.Decimal) (BetRecord, bool) {
	d, ok := ParseDate(h.Pick(row, FieldDate))
	if !ok {
		return BetRecord{}, false
	}

	rec := BetRecord{
		Date:           d,
		Race:           strings.TrimSpace(h.Pick(row, FieldRace)),
		Horse:          strings.TrimSpace(h.Pick(row, FieldHorse)),
		FavoriteRank:   ParseOptionalInt(h.Pick(row, FieldFavoriteRank)),
		FinishPosition: ParseOptionalInt(h.Pick(row, FieldFinishPosition)),
		Stake:          stake,
		Payout:         ParseAmount(h.Pick(row, FieldPayout)),
	}

	// linha em branco da planilha (só data preenchida)
	if rec.Race == "" && rec.Horse == "" && rec.Payout.IsZero() {
		return BetRecord{}, false
	}
	return rec, true
}

var dateSeparators = strings.NewReplacer(".", "/", "-", "/")

// ParseDate aceita "2024/05/01", "2024-5-1", "2024.05.01", "5/1/2024" e descarta a hora, se houver
func ParseDate(s string) (time.Time, bool) {
	t := dateSeparators.Replace(strings.TrimSpace(s))
	if i := strings.IndexAny(t, " T"); i >= 0 {
		t = t[:i]
	}
	if t == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006/1/2", "1/2/2006"} {
		if d, err := time.Parse(layout, t); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// parseNumber remove tudo que não é dígito, "." ou "-"; vazio vira 0 e lixo vira NaN
func parseNumber(s string) float64 {
	c := nonNumeric.ReplaceAllString(s, "")
	if c == "" {
		return 0
	}
	f, err := strconv.ParseFloat(c, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ParseOptionalInt trata 0 e NaN como ausente: células vazias não podem virar zero
func ParseOptionalInt(s string) *int {
	f := parseNumber(s)
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	// fora da faixa de int a conversão não é definida
	if f <= math.MinInt || f >= math.MaxInt {
		return nil
	}
	v := int(f)
	if v == 0 {
		return nil
	}
	return &v
}

// ParseAmount lê um valor em ienes ("6,000円", "¥1200"); inválido vira zero (aposta perdida)
func ParseAmount(s string) decimal.Decimal {
	c := nonNumeric.ReplaceAllString(s, "")
	if c == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(c)
	if err != nil {
		return decimal.Zero
	}
	return d
}
