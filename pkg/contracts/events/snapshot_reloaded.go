package events

import "time"

// Evento publicado no tópico "roi_snapshot_reloaded" e no canal de broadcast
// sempre que uma recarga da planilha é efetivada.
type SnapshotReloaded struct {
	RunID       string    `json:"run_id"`
	Seq         uint64    `json:"seq"`
	Source      string    `json:"source"` // "sheet" | "postgres"
	Records     int       `json:"records"`
	Skipped     int       `json:"skipped"`
	TotalStake  string    `json:"total_stake"`   // decimal em ienes
	TotalPayout string    `json:"total_payout"`  // decimal em ienes
	ROI         *float64  `json:"roi,omitempty"` // ausente quando não há apostas
	From        string    `json:"from,omitempty"`
	To          string    `json:"to,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}
