package view

import (
	"fmt"
	"time"

	"github.com/radieske/keiba-roi-dashboard/internal/dashboard/state"
	"github.com/radieske/keiba-roi-dashboard/internal/roi/aggregate"
	"github.com/radieske/keiba-roi-dashboard/internal/roi/records"
)

// PeriodRow é uma linha da tabela mensal
type PeriodRow struct {
	Key    string
	ROI    string
	Stake  string
	Payout string
	Races  int
}

// WeekOption é uma opção do seletor de semanas
type WeekOption struct {
	Key      string
	Text     string // "2024-W18（2024年 第18週）"
	Selected bool
}

// RaceRow é uma corrida da tabela de detalhe
type RaceRow struct {
	Date   string
	Race   string
	Horse  string
	Rank   string
	Finish string
	Stake  string
	Payout string
}

// Chart alimenta o gráfico de linha (ROI % por dia); nil vira lacuna
type Chart struct {
	Labels []string   `json:"labels"`
	Data   []*float64 `json:"data"`
}

// Page é tudo que o template precisa, já formatado
type Page struct {
	Loaded     bool
	Error      string
	RangeText  string
	CountText  string
	YearlyROI  string
	YearlyMeta string
	LoadedAt   string

	Months []PeriodRow
	Weeks  []WeekOption

	Selection     state.Selection
	DetailSummary string
	Races         []RaceRow

	Chart   Chart
	HasPrev bool
	HasNext bool
}

// NewPage monta o modelo a partir de um snapshot do controller
func NewPage(s state.Snapshot) Page {
	rep := s.Report
	sum := rep.Summary

	p := Page{
		Loaded:    s.Loaded,
		RangeText: Placeholder,
		CountText: "登録件数: 0",
		YearlyROI: Percent(sum.ROI),
		YearlyMeta: fmt.Sprintf("投資 %s（%s） / 払戻 %s",
			Yen(sum.TotalStake), Races(sum.RaceCount), Yen(sum.TotalPayout)),
		Selection: s.Selection,
		Chart:     NewChart(s.Window),
		HasPrev:   s.HasPrev,
		HasNext:   s.HasNext,
	}
	if !sum.Empty() {
		p.RangeText = fmt.Sprintf("%s 〜 %s", date(sum.From), date(sum.To))
		p.CountText = "登録件数: " + Races(sum.RaceCount)
	}
	if !s.LoadedAt.IsZero() {
		p.LoadedAt = s.LoadedAt.Format(time.RFC3339)
	}
	if s.Err != nil {
		p.Error = s.Err.Error()
		p.YearlyROI = ErrorPlaceholder
		p.YearlyMeta = p.Error
	}

	for _, m := range rep.Months {
		p.Months = append(p.Months, PeriodRow{
			Key:    m.Key,
			ROI:    Percent(m.ROI),
			Stake:  Yen(m.TotalStake),
			Payout: Yen(m.TotalPayout),
			Races:  m.RaceCount,
		})
	}
	for _, w := range rep.Weeks {
		p.Weeks = append(p.Weeks, WeekOption{
			Key:      w.Key,
			Text:     fmt.Sprintf("%s（%s）", w.Key, aggregate.WeekLabel(w.Key)),
			Selected: s.Selection.Kind == aggregate.KindWeek && s.Selection.Key == w.Key,
		})
	}

	p.DetailSummary, p.Races = detail(s.Detail)
	return p
}

// NewChart converte a janela de dias em rótulos e ROI percentual
func NewChart(days []aggregate.Bucket) Chart {
	c := Chart{Labels: make([]string, 0, len(days)), Data: make([]*float64, 0, len(days))}
	for _, d := range days {
		c.Labels = append(c.Labels, d.Key)
		if v, ok := d.ROI.Percent(); ok {
			c.Data = append(c.Data, &v)
		} else {
			c.Data = append(c.Data, nil)
		}
	}
	return c
}

// NewRaceRows formata as corridas de um período
func NewRaceRows(recs []records.BetRecord) []RaceRow {
	rows := make([]RaceRow, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, RaceRow{
			Date:   r.DateString(),
			Race:   r.Race,
			Horse:  r.Horse,
			Rank:   OptInt(r.FavoriteRank),
			Finish: OptInt(r.FinishPosition),
			Stake:  Yen(r.Stake),
			Payout: Yen(r.Payout),
		})
	}
	return rows
}

func detail(d state.Detail) (string, []RaceRow) {
	if d.Key == "" {
		return Placeholder, nil
	}
	if !d.Found {
		if d.Kind == aggregate.KindDay {
			return "その日のデータがありません。", nil
		}
		return "その週のデータがありません。", nil
	}

	b := d.Bucket
	title := b.Key
	if d.Kind == aggregate.KindWeek {
		title = fmt.Sprintf("%s（%s）", b.Key, aggregate.WeekLabel(b.Key))
	}
	summary := fmt.Sprintf("%s %s〜%s / 回収率 %s（投資 %s・払戻 %s・%s）",
		title, date(b.From), date(b.To), Percent(b.ROI),
		Yen(b.TotalStake), Yen(b.TotalPayout), Races(b.RaceCount))
	return summary, NewRaceRows(b.Records)
}

func date(t time.Time) string { return t.Format(records.DateLayout) }
