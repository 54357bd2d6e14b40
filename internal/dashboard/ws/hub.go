package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/keiba-roi-dashboard/pkg/contracts/events"
)

// Message é o envelope enviado aos navegadores
type Message struct {
	Type    string                   `json:"type"` // "reloaded" | "pong"
	Payload *events.SnapshotReloaded `json:"payload,omitempty"`
}

// ClientMsg é o que o navegador pode mandar (só ping)
type ClientMsg struct {
	Type string `json:"type"`
}

const writeWait = 2 * time.Second

// client serializa as escritas numa conexão: gorilla aceita um único escritor por vez
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// Hub gerencia as conexões WebSocket abertas pelo dashboard e avisa
// todas quando uma recarga é efetivada
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger

	mu      sync.RWMutex
	clients map[string]*client

	connections prometheus.Gauge
	sent        prometheus.Counter
}

// NewHub cria o hub com política de origem customizada e registra suas métricas
func NewHub(allowOrigin func(r *http.Request) bool, log *zap.Logger, reg prometheus.Registerer) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     allowOrigin,
		},
		log:     log,
		clients: make(map[string]*client),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roi_ws_connections",
			Help: "navegadores conectados ao WebSocket",
		}),
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roi_ws_messages_sent_total",
			Help: "total de avisos de recarga enviados",
		}),
	}
	if reg != nil {
		reg.MustRegister(h.connections, h.sent)
	}
	return h
}

// HandleWS mantém a conexão viva até o cliente sair; responde pings
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	id := uuid.NewString()
	c := &client{conn: conn}
	h.add(id, c)
	defer func() {
		h.remove(id)
		_ = conn.Close()
	}()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type == "ping" {
			if err := c.write(pong); err != nil {
				return
			}
		}
	}
}

var pong, _ = json.Marshal(Message{Type: "pong"})

func (h *Hub) add(id string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = c
	h.connections.Inc()
	h.log.Debug("ws client connected", zap.String("client_id", id))
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		h.connections.Dec()
		h.log.Debug("ws client disconnected", zap.String("client_id", id))
	}
}

// Len retorna quantos clientes estão conectados
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast envia o aviso de recarga para todos os clientes conectados
func (h *Hub) Broadcast(ev events.SnapshotReloaded) {
	msg, _ := json.Marshal(Message{Type: "reloaded", Payload: &ev})

	// cópia do mapa: um cliente lento não segura o lock do hub
	h.mu.RLock()
	targets := make(map[string]*client, len(h.clients))
	for id, c := range h.clients {
		targets[id] = c
	}
	h.mu.RUnlock()

	for id, c := range targets {
		if err := c.write(msg); err != nil {
			h.log.Warn("ws write failed", zap.String("client_id", id), zap.Error(err))
			_ = c.conn.Close()
			continue
		}
		h.sent.Inc()
	}
}

// NotifyReloaded permite usar o hub direto como destino do controller (sem Redis)
func (h *Hub) NotifyReloaded(_ context.Context, ev events.SnapshotReloaded) error {
	h.Broadcast(ev)
	return nil
}
