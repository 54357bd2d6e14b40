package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	ctopics "github.com/radieske/keiba-roi-dashboard/pkg/contracts/topics"
)

// DefaultSheetCSVURL é a planilha publicada (CSV) usada quando SHEET_CSV_URL não é informada
const DefaultSheetCSVURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vREk1VsXzGIVBKq27R9hDZZMvM3v5HAaRQfXpxMJnfuUZljh1p6OIf_FgKFAA8zyUc2PPYv8RepTH8d/pub?gid=2133702332&single=true&output=csv"

// Fontes de dados aceitas em ROI_SOURCE
const (
	SourceSheet    = "sheet"
	SourcePostgres = "postgres"
)

// Config centraliza variáveis de ambiente e parâmetros de execução dos serviços
// Inclui a origem da planilha, valor apostado por corrida, conexões opcionais e portas
type Config struct {
	Env         string // "local", "dev", "prod"
	ServiceName string // ex: "roi-dashboard", "sheet-simulator"
	LogLevel    string // vazio usa o padrão do env

	// Origem dos registros
	Source       string // "sheet" | "postgres"
	SheetCSVURL  string
	FetchTimeout time.Duration

	// Regras de cálculo
	StakePerRace       int64 // valor fixo (ienes) apostado em cada corrida
	DayWindowSize      int   // quantidade de dias exibidos no gráfico
	HeaderSynonymsFile string

	// Dependências opcionais: string vazia desliga a integração
	PostgresDSN  string
	RedisAddr    string
	KafkaBrokers string // "a:9092,b:9092"

	// Tópicos/canais
	TopicSnapshotReloaded string
	RedisPubSubChannel    string

	// Simulador de planilha
	SimulatorRows int

	// Origens aceitas pela API JSON e pelo WebSocket
	CORSOrigins []string

	// Portas do serviço atual
	HTTPPort    string // Porta pública (dashboard + API)
	MetricsPort string // Porta exclusiva para /metrics e /healthz
}

// Load carrega variáveis de ambiente e define defaults para cada serviço
// Resolve portas conforme o SERVICE_NAME
func Load() Config {
	svc := getEnv("SERVICE_NAME", "roi-dashboard")
	env := getEnv("ENV", "local")

	cfg := Config{
		Env:         env,
		ServiceName: svc,
		LogLevel:    getEnv("LOG_LEVEL", ""),

		Source:       getEnv("ROI_SOURCE", SourceSheet),
		SheetCSVURL:  getEnv("SHEET_CSV_URL", DefaultSheetCSVURL),
		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 15*time.Second),

		StakePerRace:       int64(getEnvInt("STAKE_PER_RACE", 2000)),
		DayWindowSize:      getEnvInt("DAY_WINDOW_SIZE", 30),
		HeaderSynonymsFile: getEnv("HEADER_SYNONYMS_FILE", ""),

		PostgresDSN:  getEnv("POSTGRES_DSN", ""),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),

		TopicSnapshotReloaded: getEnv("KAFKA_TOPIC_SNAPSHOT", ctopics.SnapshotReloaded),
		RedisPubSubChannel:    getEnv("REDIS_PUBSUB_CHANNEL", ctopics.ReloadBroadcast),

		SimulatorRows: getEnvInt("SIMULATOR_ROWS", 400),

		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"*"}),
	}

	// Define portas padrão para cada serviço
	switch svc {
	case "sheet-simulator":
		cfg.HTTPPort = getEnv("HTTP_PORT_SIMULATOR", "8081")
		cfg.MetricsPort = getEnv("METRICS_PORT_SIMULATOR", "9094")
	default:
		cfg.HTTPPort = getEnv("HTTP_PORT", "8080")
		cfg.MetricsPort = getEnv("METRICS_PORT", "9095")
	}

	return cfg
}

// getEnv retorna o valor da variável de ambiente ou o default
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

// getEnvInt retorna o inteiro da variável de ambiente; valores inválidos caem no default
func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// getEnvList lê uma lista separada por vírgula; vazia cai no default
func getEnvList(key string, def []string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
