package records_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/keiba-roi-dashboard/internal/roi/records"
)

var stake = decimal.NewFromInt(2000)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestParseDate(t *testing.T) {
	tests := []struct {
		in     string
		want   time.Time
		wantOK bool
	}{
		{"2024/05/01", day(2024, 5, 1), true},
		{"2024-05-01", day(2024, 5, 1), true},
		{"2024.5.1", day(2024, 5, 1), true},
		{" 2024/5/1 ", day(2024, 5, 1), true},
		{"2024/05/01 13:45:10", day(2024, 5, 1), true},
		{"2024-05-01T13:45:10Z", day(2024, 5, 1), true},
		{"5/1/2024", day(2024, 5, 1), true},
		{"2024/13/01", time.Time{}, false},
		{"2024/02/30", time.Time{}, false},
		{"yesterday", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := records.ParseDate(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseOptionalInt(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"3", intPtr(3)},
		{"3番人気", intPtr(3)},
		{" 12 ", intPtr(12)},
		{"", nil},
		{"0", nil},
		{"取消", nil},
		{"1-2", nil},
		{"1.2.3", nil},
		{"99999999999999999999", nil},
		{"-99999999999999999999", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := records.ParseOptionalInt(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseOptionalInt(%q) = %v, want %v", tt.in, deref(got), deref(tt.want))
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"6000", "6000"},
		{"6,000円", "6000"},
		{"¥1,230", "1230"},
		{"", "0"},
		{"なし", "0"},
		{"1.2.3", "0"},
		{"-", "0"},
		{"150.5", "150.5"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := records.ParseAmount(tt.in)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	table := [][]string{
		{"タイムスタンプ", "日付", "レース名", "本命馬名", "本命人気", "着順", "払戻金", "memo"},
		{"2024/05/02 20:00:00", "2024/05/02", "京都1R", "ウマA", "1", "2", "", "x"},
		{"2024/05/01 20:00:00", "2024/05/01", "東京11R", "ウマB", "", "1", "6,000", ""},
		{"", "not a date", "東京12R", "ウマC", "2", "3", "0", ""},
		{"", "2024/05/03", "", "", "", "", "", "blank sheet row"},
		{"", "2024/05/01", "東京12R", "ウマD", "5", "取消"},
	}

	recs, st := records.Normalize(table, records.Options{Stake: stake})

	if st.Rows != 5 || st.Skipped != 2 {
		t.Fatalf("stats = %+v, want Rows=5 Skipped=2", st)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}

	// ordenado por data, estável para o mesmo dia
	wantRaces := []string{"東京11R", "東京12R", "京都1R"}
	for i, r := range recs {
		if r.Race != wantRaces[i] {
			t.Errorf("record %d race = %q, want %q", i, r.Race, wantRaces[i])
		}
		if !r.Stake.Equal(stake) {
			t.Errorf("record %d stake = %s, want %s", i, r.Stake, stake)
		}
	}

	first := recs[0]
	if first.DateString() != "2024-05-01" {
		t.Errorf("date = %s, want 2024-05-01", first.DateString())
	}
	if first.FavoriteRank != nil {
		t.Errorf("empty rank should be absent, got %d", *first.FavoriteRank)
	}
	if first.FinishPosition == nil || *first.FinishPosition != 1 {
		t.Errorf("finish position = %v, want 1", deref(first.FinishPosition))
	}
	if !first.Payout.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("payout = %s, want 6000", first.Payout)
	}

	short := recs[1]
	if short.FinishPosition != nil {
		t.Errorf("non-numeric finish position should be absent")
	}
	if !short.Payout.IsZero() {
		t.Errorf("missing payout column should be zero, got %s", short.Payout)
	}
}

func TestNormalize_KeepsRecordsWithOnlyPayout(t *testing.T) {
	table := [][]string{
		{"date", "race", "honmei", "payout"},
		{"2024/05/01", "", "", "1200"},
		{"2024/05/01", "", "ウマ", ""},
	}

	recs, _ := records.Normalize(table, records.Options{Stake: stake})
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
}

func TestNormalize_HeaderOnlyOrEmpty(t *testing.T) {
	for _, table := range [][][]string{nil, {{"date", "race"}}} {
		recs, st := records.Normalize(table, records.Options{Stake: stake})
		if len(recs) != 0 || st.Rows != 0 {
			t.Errorf("Normalize(%v) = %d records, stats %+v; want none", table, len(recs), st)
		}
	}
}

func TestNormalize_MissingDateColumnSkipsAll(t *testing.T) {
	table := [][]string{
		{"race", "payout"},
		{"東京11R", "6000"},
	}
	recs, st := records.Normalize(table, records.Options{Stake: stake})
	if len(recs) != 0 || st.Skipped != 1 {
		t.Errorf("got %d records, stats %+v; want 0 records, 1 skipped", len(recs), st)
	}
}

func TestNewHeader_SynonymSetsResolveIdentically(t *testing.T) {
	syn := records.DefaultSynonyms()

	defaults := records.NewHeader([]string{"date", "race", "honmei", "ninki", "chaku", "payout", "timestamp"}, syn)
	alternate := records.NewHeader([]string{"開催日", "レース名", "本命馬名", "本命人気", "着順", "払戻金", "タイムスタンプ"}, syn)
	mixedCase := records.NewHeader([]string{"\ufeffDATE", " Race ", "Selected Horse", "Popularity", "Finish Position", "PAYOUT AMOUNT", "TimeStamp"}, syn)

	if !reflect.DeepEqual(defaults, alternate) {
		t.Errorf("alternate synonyms mapped to %v, want %v", alternate, defaults)
	}
	if !reflect.DeepEqual(defaults, mixedCase) {
		t.Errorf("mixed-case synonyms mapped to %v, want %v", mixedCase, defaults)
	}
	for _, f := range records.Fields {
		if _, ok := defaults[f]; !ok {
			t.Errorf("field %s not mapped", f)
		}
	}
}

func TestNewHeader_UnknownAndDuplicateColumns(t *testing.T) {
	h := records.NewHeader([]string{"date", "Memo", "payout", "払戻金"}, records.DefaultSynonyms())

	if h[records.Field("memo")] != 1 {
		t.Errorf("unknown header should pass through as its lowercase name")
	}
	if h[records.FieldPayout] != 3 {
		t.Errorf("duplicate payout column should resolve to the last one, got %d", h[records.FieldPayout])
	}
	if got := h.Pick([]string{"2024/05/01"}, records.FieldPayout); got != "" {
		t.Errorf("short row should yield empty string, got %q", got)
	}
}

func TestLoadSynonyms(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "synonyms.yaml")
	if err := os.WriteFile(path, []byte("date: [日にち]\npayout: [\" 配当 \"]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	syn, err := records.LoadSynonyms(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if syn.Resolve("日にち") != records.FieldDate {
		t.Errorf("extra date synonym not resolved")
	}
	if syn.Resolve("配当") != records.FieldPayout {
		t.Errorf("extra payout synonym not resolved")
	}
	if syn.Resolve("日付") != records.FieldDate {
		t.Errorf("default synonyms should be kept")
	}
}

func TestLoadSynonyms_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := records.LoadSynonyms(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("odds: [x]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := records.LoadSynonyms(bad); err == nil {
		t.Errorf("expected error for unknown field")
	}
}

func intPtr(v int) *int { return &v }

func deref(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
