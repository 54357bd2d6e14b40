package topics

const (
	// Kafka: um evento por recarga concluída
	SnapshotReloaded = "roi_snapshot_reloaded"

	// Redis Pub/Sub: aviso para os clientes WebSocket do dashboard
	ReloadBroadcast = "roi_reload_broadcast"
)
