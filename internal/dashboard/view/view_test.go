package view

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/radieske/keiba-roi-dashboard/internal/dashboard/state"
	"github.com/radieske/keiba-roi-dashboard/internal/roi/aggregate"
	"github.com/radieske/keiba-roi-dashboard/internal/roi/records"
	"github.com/radieske/keiba-roi-dashboard/internal/roi/report"
)

func TestYen(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0円"},
		{"6000", "6,000円"},
		{"1234567", "1,234,567円"},
		{"999.5", "1,000円"},
		{"1200.4", "1,200円"},
		{"-2000", "-2,000円"},
	}
	for _, tt := range tests {
		if got := Yen(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("Yen(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	stake := decimal.NewFromInt(2000)
	tests := []struct {
		name string
		r    aggregate.Ratio
		want string
	}{
		{"invalid", aggregate.Ratio{}, "—"},
		{"zero", aggregate.RatioOf(decimal.Zero, stake), "0.0%"},
		{"150", aggregate.RatioOf(decimal.NewFromInt(3000), stake), "150.0%"},
		{"one third", aggregate.RatioOf(decimal.NewFromInt(2000), decimal.NewFromInt(6000)), "33.3%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percent(tt.r); got != tt.want {
				t.Errorf("Percent = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOptInt(t *testing.T) {
	three := 3
	if got := OptInt(&three); got != "3" {
		t.Errorf("OptInt(3) = %q", got)
	}
	if got := OptInt(nil); got != Placeholder {
		t.Errorf("OptInt(nil) = %q", got)
	}
}

func sampleReport() report.Report {
	table := [][]string{
		{"日付", "レース", "本命", "人気", "着順", "払戻"},
		{"2024/05/01", "東京11R", "<b>A</b>", "1", "1", "6000"},
		{"2024/05/01", "東京12R", "B", "", "", ""},
		{"2024/05/02", "京都1R", "C", "2", "4", "0"},
	}
	return report.Build(table, records.Options{Stake: decimal.NewFromInt(2000)})
}

func TestNewPage(t *testing.T) {
	rep := sampleReport()
	wk, _ := rep.Week("2024-W18")
	snap := state.Snapshot{
		Report:    rep,
		Loaded:    true,
		Selection: state.Selection{Kind: aggregate.KindWeek, Key: "2024-W18"},
		Detail:    state.Detail{Selection: state.Selection{Kind: aggregate.KindWeek, Key: "2024-W18"}, Found: true, Bucket: wk},
		Window:    rep.Days,
	}

	p := NewPage(snap)

	if p.YearlyROI != "100.0%" {
		t.Errorf("YearlyROI = %q", p.YearlyROI)
	}
	if p.YearlyMeta != "投資 6,000円（3レース） / 払戻 6,000円" {
		t.Errorf("YearlyMeta = %q", p.YearlyMeta)
	}
	if p.RangeText != "2024-05-01 〜 2024-05-02" || p.CountText != "登録件数: 3レース" {
		t.Errorf("range=%q count=%q", p.RangeText, p.CountText)
	}
	if len(p.Months) != 1 || p.Months[0].ROI != "100.0%" || p.Months[0].Stake != "6,000円" {
		t.Errorf("months = %+v", p.Months)
	}
	if len(p.Weeks) != 1 || !p.Weeks[0].Selected || p.Weeks[0].Text != "2024-W18（2024年 第18週）" {
		t.Errorf("weeks = %+v", p.Weeks)
	}
	wantSummary := "2024-W18（2024年 第18週） 2024-05-01〜2024-05-02 / 回収率 100.0%（投資 6,000円・払戻 6,000円・3レース）"
	if p.DetailSummary != wantSummary {
		t.Errorf("DetailSummary = %q", p.DetailSummary)
	}
	if len(p.Races) != 3 || p.Races[1].Rank != "—" || p.Races[1].Payout != "0円" {
		t.Errorf("races = %+v", p.Races)
	}
	if p.Races[0].Horse != "<b>A</b>" {
		t.Errorf("horse should stay raw for the template to escape, got %q", p.Races[0].Horse)
	}

	if len(p.Chart.Labels) != 2 || p.Chart.Labels[0] != "2024-05-01" {
		t.Errorf("chart labels = %v", p.Chart.Labels)
	}
	if p.Chart.Data[0] == nil || *p.Chart.Data[0] != 150 {
		t.Errorf("chart data[0] = %v", p.Chart.Data[0])
	}
}

func TestNewPage_Empty(t *testing.T) {
	p := NewPage(state.Snapshot{})
	if p.YearlyROI != Placeholder || p.RangeText != Placeholder || p.CountText != "登録件数: 0" {
		t.Errorf("empty page = %+v", p)
	}
	if p.DetailSummary != Placeholder || len(p.Races) != 0 {
		t.Errorf("empty detail = %q %v", p.DetailSummary, p.Races)
	}
}

func TestNewPage_Error(t *testing.T) {
	rep := sampleReport()
	p := NewPage(state.Snapshot{Report: rep, Loaded: true, Err: errors.New("sheet fetch http 500")})
	if p.YearlyROI != ErrorPlaceholder {
		t.Errorf("YearlyROI = %q", p.YearlyROI)
	}
	if !strings.Contains(p.YearlyMeta, "500") {
		t.Errorf("YearlyMeta = %q", p.YearlyMeta)
	}
	if len(p.Months) != 1 {
		t.Errorf("previous tables should still render")
	}
}

func TestDetail_NotFound(t *testing.T) {
	tests := []struct {
		kind aggregate.Kind
		want string
	}{
		{aggregate.KindWeek, "その週のデータがありません。"},
		{aggregate.KindDay, "その日のデータがありません。"},
	}
	for _, tt := range tests {
		summary, rows := detail(state.Detail{Selection: state.Selection{Kind: tt.kind, Key: "x"}})
		if summary != tt.want || rows != nil {
			t.Errorf("%s: summary=%q rows=%v", tt.kind, summary, rows)
		}
	}
}

func TestNewChart_InvalidRatioIsGap(t *testing.T) {
	c := NewChart([]aggregate.Bucket{{Key: "2024-05-01"}})
	if len(c.Data) != 1 || c.Data[0] != nil {
		t.Errorf("expected nil gap, got %v", c.Data)
	}
}
