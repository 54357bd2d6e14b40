package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/keiba-roi-dashboard/internal/dashboard/state"
	"github.com/radieske/keiba-roi-dashboard/internal/roi/records"
)

type tableSource struct {
	table [][]string
	err   error
}

func (s *tableSource) Name() string { return "test" }

func (s *tableSource) Table(context.Context) ([][]string, error) { return s.table, s.err }

var sample = [][]string{
	{"日付", "レース", "本命", "人気", "着順", "払戻"},
	{"2024/05/01", "東京11R", "<script>x</script>", "1", "1", "6000"},
	{"2024/05/01", "東京12R", "B", "3", "5", ""},
	{"2024/05/02", "京都1R", "C", "2", "4", "0"},
	{"2024/05/08", "京都2R", "D", "1", "2", "1500"},
}

func newTestServer(t *testing.T, src *tableSource) (*Server, http.Handler) {
	t.Helper()
	ctrl := state.NewController(src, records.Options{Stake: decimal.NewFromInt(2000)}, 30, zap.NewNop())
	if _, err := ctrl.Reload(context.Background()); err != nil && src.err == nil {
		t.Fatalf("initial reload: %v", err)
	}
	s := &Server{Ctrl: ctrl, Log: zap.NewNop(), CORSOrigins: []string{"*"}}
	return s, s.Router()
}

func do(h http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDashboard_RendersAndEscapes(t *testing.T) {
	s, h := newTestServer(t, &tableSource{table: sample})

	rec := do(h, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"93.8%", "登録件数: 4レース", "2024-W19（2024年 第19週）", "2024-05-01 〜 2024-05-08"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}

	if _, err := s.Ctrl.Select("week", "2024-W18"); err != nil {
		t.Fatal(err)
	}
	body = do(h, http.MethodGet, "/", nil).Body.String()
	if strings.Contains(body, "<script>x</script>") || !strings.Contains(body, "&lt;script&gt;x&lt;/script&gt;") {
		t.Errorf("horse name was not escaped")
	}
}

func TestDashboard_ErrorPlaceholder(t *testing.T) {
	_, h := newTestServer(t, &tableSource{err: errors.New("sheet fetch http 500")})

	body := do(h, http.MethodGet, "/", nil).Body.String()
	if !strings.Contains(body, "読込エラー") || !strings.Contains(body, "sheet fetch http 500") {
		t.Errorf("error placeholder missing")
	}
}

func TestForms_RedirectAndMutateState(t *testing.T) {
	s, h := newTestServer(t, &tableSource{table: sample})

	rec := do(h, http.MethodPost, "/select", url.Values{"kind": {"week"}, "key": {"2024-W18"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("select status = %d", rec.Code)
	}
	if got := s.Ctrl.Snapshot().Selection.Key; got != "2024-W18" {
		t.Errorf("selection = %s", got)
	}

	rec = do(h, http.MethodPost, "/select", url.Values{"day": {"2024-05-08"}})
	if rec.Code != http.StatusSeeOther || s.Ctrl.Snapshot().Selection.Key != "2024-W19" {
		t.Errorf("chart click select failed: %d %+v", rec.Code, s.Ctrl.Snapshot().Selection)
	}

	if rec := do(h, http.MethodPost, "/select", url.Values{"kind": {"year"}, "key": {"2024"}}); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown kind status = %d", rec.Code)
	}

	if rec := do(h, http.MethodPost, "/window/prev", nil); rec.Code != http.StatusSeeOther {
		t.Errorf("window status = %d", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/window/sideways", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad window dir status = %d", rec.Code)
	}

	rec = do(h, http.MethodPost, "/reload", nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("reload = %d %s", rec.Code, rec.Header().Get("Location"))
	}
	if s.Ctrl.Snapshot().Seq != 2 {
		t.Errorf("reload did not run")
	}
}

func TestAPI_Summary(t *testing.T) {
	_, h := newTestServer(t, &tableSource{table: sample})

	rec := do(h, http.MethodGet, "/v1/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got struct {
		Loaded      bool     `json:"loaded"`
		RaceCount   int      `json:"race_count"`
		TotalPayout string   `json:"total_payout"`
		ROI         *float64 `json:"roi"`
		From        string   `json:"from"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Loaded || got.RaceCount != 4 || got.TotalPayout != "7500" || got.ROI == nil || *got.ROI != 0.9375 || got.From != "2024-05-01" {
		t.Errorf("summary = %+v", got)
	}
}

func TestAPI_SummaryEmptyROIIsNull(t *testing.T) {
	_, h := newTestServer(t, &tableSource{table: sample[:1]})

	var got map[string]any
	if err := json.Unmarshal(do(h, http.MethodGet, "/v1/summary", nil).Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v, ok := got["roi"]; !ok || v != nil {
		t.Errorf("roi = %v (present=%v), want null", v, ok)
	}
}

func TestAPI_Lists(t *testing.T) {
	_, h := newTestServer(t, &tableSource{table: sample})

	var weeks []BucketResponse
	_ = json.Unmarshal(do(h, http.MethodGet, "/v1/weeks", nil).Body.Bytes(), &weeks)
	if len(weeks) != 2 || weeks[0].Key != "2024-W18" || weeks[0].Label != "2024年 第18週" || weeks[0].RaceCount != 3 {
		t.Errorf("weeks = %+v", weeks)
	}

	var months []BucketResponse
	_ = json.Unmarshal(do(h, http.MethodGet, "/v1/months", nil).Body.Bytes(), &months)
	if len(months) != 1 || months[0].Key != "2024-05" || months[0].Label != "" {
		t.Errorf("months = %+v", months)
	}

	var days DaysResponse
	_ = json.Unmarshal(do(h, http.MethodGet, "/v1/days", nil).Body.Bytes(), &days)
	if len(days.Days) != 3 || len(days.Chart.Labels) != 3 || days.HasPrev || days.HasNext {
		t.Errorf("days = %+v", days)
	}
}

func TestAPI_Races(t *testing.T) {
	_, h := newTestServer(t, &tableSource{table: sample})

	tests := []struct {
		path   string
		status int
		races  int
	}{
		{"/v1/days/2024-05-01/races", http.StatusOK, 2},
		{"/v1/weeks/2024-W18/races", http.StatusOK, 3},
		{"/v1/weeks/2020-W01/races", http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(h, http.MethodGet, tt.path, nil)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			var got RacesResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got.Races) != tt.races || got.Summary == nil {
				t.Errorf("races = %d summary=%v", len(got.Races), got.Summary)
			}
		})
	}
}

func TestAPI_Reload(t *testing.T) {
	src := &tableSource{table: sample}
	_, h := newTestServer(t, src)

	rec := do(h, http.MethodPost, "/v1/reload", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	src.err = errors.New("sheet fetch http 503")
	if rec := do(h, http.MethodPost, "/v1/reload", nil); rec.Code != http.StatusBadGateway {
		t.Errorf("failed reload status = %d", rec.Code)
	}
}

func TestAPI_CORS(t *testing.T) {
	_, h := newTestServer(t, &tableSource{table: sample})

	req := httptest.NewRequest(http.MethodGet, "/v1/summary", nil)
	req.Header.Set("Origin", "http://example.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header: %v", rec.Header())
	}
}
