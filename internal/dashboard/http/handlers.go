package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/radieske/keiba-roi-dashboard/internal/dashboard/state"
	"github.com/radieske/keiba-roi-dashboard/internal/dashboard/view"
	"github.com/radieske/keiba-roi-dashboard/internal/roi/aggregate"
	"github.com/radieske/keiba-roi-dashboard/internal/roi/records"
)

// SummaryResponse é o resumo anual
type SummaryResponse struct {
	Loaded      bool            `json:"loaded"`
	Error       string          `json:"error,omitempty"`
	RunID       string          `json:"run_id,omitempty"`
	RaceCount   int             `json:"race_count"`
	TotalStake  decimal.Decimal `json:"total_stake"`
	TotalPayout decimal.Decimal `json:"total_payout"`
	ROI         aggregate.Ratio `json:"roi"`
	From        string          `json:"from,omitempty"`
	To          string          `json:"to,omitempty"`
	Skipped     int             `json:"skipped_rows"`
}

// BucketResponse é um período agregado
type BucketResponse struct {
	Key         string          `json:"key"`
	Label       string          `json:"label,omitempty"`
	From        string          `json:"from"`
	To          string          `json:"to"`
	RaceCount   int             `json:"race_count"`
	TotalStake  decimal.Decimal `json:"total_stake"`
	TotalPayout decimal.Decimal `json:"total_payout"`
	ROI         aggregate.Ratio `json:"roi"`
}

// DaysResponse é a janela atual de dias
type DaysResponse struct {
	Days    []BucketResponse `json:"days"`
	Chart   view.Chart       `json:"chart"`
	HasPrev bool             `json:"has_prev"`
	HasNext bool             `json:"has_next"`
}

// RaceResponse é uma corrida
type RaceResponse struct {
	Date           string          `json:"date"`
	Race           string          `json:"race"`
	Horse          string          `json:"horse"`
	FavoriteRank   *int            `json:"favorite_rank"`
	FinishPosition *int            `json:"finish_position"`
	Stake          decimal.Decimal `json:"stake"`
	Payout         decimal.Decimal `json:"payout"`
}

// RacesResponse é o detalhe de um dia ou semana
type RacesResponse struct {
	Kind    aggregate.Kind  `json:"kind"`
	Key     string          `json:"key"`
	Summary *BucketResponse `json:"summary,omitempty"`
	Races   []RaceResponse  `json:"races"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	snap := s.Ctrl.Snapshot()
	sum := snap.Report.Summary
	resp := SummaryResponse{
		Loaded:      snap.Loaded,
		RunID:       snap.RunID,
		RaceCount:   sum.RaceCount,
		TotalStake:  sum.TotalStake,
		TotalPayout: sum.TotalPayout,
		ROI:         sum.ROI,
		Skipped:     snap.Report.Stats.Skipped,
	}
	if snap.Err != nil {
		resp.Error = snap.Err.Error()
	}
	if !sum.Empty() {
		resp.From = sum.From.Format(records.DateLayout)
		resp.To = sum.To.Format(records.DateLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listMonths(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, bucketsResponse(s.Ctrl.Snapshot().Report.Months, false))
}

func (s *Server) listWeeks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, bucketsResponse(s.Ctrl.Snapshot().Report.Weeks, true))
}

func (s *Server) listDays(w http.ResponseWriter, r *http.Request) {
	snap := s.Ctrl.Snapshot()
	writeJSON(w, http.StatusOK, DaysResponse{
		Days:    bucketsResponse(snap.Window, false),
		Chart:   view.NewChart(snap.Window),
		HasPrev: snap.HasPrev,
		HasNext: snap.HasNext,
	})
}

func (s *Server) listRaces(kind aggregate.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		d, err := s.Ctrl.Detail(kind, key)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !d.Found {
			writeError(w, http.StatusNotFound, "no races for "+string(kind)+" "+key)
			return
		}
		b := bucketResponse(d.Bucket, kind == aggregate.KindWeek)
		resp := RacesResponse{Kind: kind, Key: key, Summary: &b, Races: make([]RaceResponse, 0, len(d.Bucket.Records))}
		for _, rec := range d.Bucket.Records {
			resp.Races = append(resp.Races, RaceResponse{
				Date:           rec.DateString(),
				Race:           rec.Race,
				Horse:          rec.Horse,
				FavoriteRank:   rec.FavoriteRank,
				FinishPosition: rec.FinishPosition,
				Stake:          rec.Stake,
				Payout:         rec.Payout,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) postReload(w http.ResponseWriter, r *http.Request) {
	ev, err := s.Ctrl.Reload(r.Context())
	switch {
	case errors.Is(err, state.ErrStaleRun):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeJSON(w, http.StatusOK, ev)
	}
}

func bucketsResponse(bs []aggregate.Bucket, weekly bool) []BucketResponse {
	out := make([]BucketResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, bucketResponse(b, weekly))
	}
	return out
}

func bucketResponse(b aggregate.Bucket, weekly bool) BucketResponse {
	resp := BucketResponse{
		Key:         b.Key,
		From:        b.From.Format(records.DateLayout),
		To:          b.To.Format(records.DateLayout),
		RaceCount:   b.RaceCount,
		TotalStake:  b.TotalStake,
		TotalPayout: b.TotalPayout,
		ROI:         b.ROI,
	}
	if weekly {
		resp.Label = aggregate.WeekLabel(b.Key)
	}
	return resp
}
