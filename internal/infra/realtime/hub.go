package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
)

const (
	defaultSendBuffer   = 16
	defaultWriteTimeout = 10 * time.Second
	defaultPingInterval = 30 * time.Second
)

// ErrHubClosed возвращается при подписке после остановки хаба
var ErrHubClosed = errors.New("realtime: hub is closed")

// Config настройки хаба
type Config struct {
	SendBuffer     int           // Очередь сообщений клиента; переполнение - отключение клиента
	WriteTimeout   time.Duration // Таймаут записи в сокет
	PingInterval   time.Duration // Интервал ping; pong ждём два интервала
	AllowedOrigins []string      // Пусто - любой Origin
}

// Hub рассылает события слотов подписчикам площадки по websocket
type Hub struct {
	cfg      Config
	upgrader websocket.Upgrader
	metrics  Metrics
	logger   Logger

	mu      sync.RWMutex
	clients map[int64]map[*client]struct{}
	closed  bool
}

type client struct {
	conn    *websocket.Conn
	venueID int64
	send    chan []byte
	once    sync.Once
	done    chan struct{}
}

func (c *client) stop() {
	c.once.Do(func() { close(c.done) })
}

// NewHub создает хаб
func NewHub(cfg Config, metrics Metrics, logger Logger) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}

	h := &Hub{
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		clients: make(map[int64]map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

// Publish отправляет событие подписчикам площадки. Не блокируется: клиент с полной очередью отключается.
func (h *Hub) Publish(event domain.SlotEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Publish: failed to marshal event venue=%d: %v", event.VenueID, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[event.VenueID] {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("Publish: dropping slow subscriber of venue=%d", event.VenueID)
			c.stop()
		}
	}
}

// Serve переводит запрос в websocket и держит подписку на площадку до отключения клиента
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, venueID int64) error {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return ErrHubClosed
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		return err
	}

	c := &client{
		conn:    conn,
		venueID: venueID,
		send:    make(chan []byte, h.cfg.SendBuffer),
		done:    make(chan struct{}),
	}

	if !h.register(c) {
		_ = conn.Close()
		return ErrHubClosed
	}
	defer h.unregister(c)

	go h.readLoop(c)
	h.writeLoop(c)
	return nil
}

// Subscribers количество подписчиков площадки
func (h *Hub) Subscribers(venueID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[venueID])
}

// Close отключает всех клиентов и запрещает новые подписки
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for _, set := range h.clients {
		for c := range set {
			c.stop()
		}
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	set, ok := h.clients[c.venueID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.venueID] = set
	}
	set[c] = struct{}{}
	h.addClients(1)
	h.logger.Info("Serve: subscriber connected to venue=%d", c.venueID)
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if set, ok := h.clients[c.venueID]; ok {
		if _, present := set[c]; present {
			delete(set, c)
			h.addClients(-1)
		}
		if len(set) == 0 {
			delete(h.clients, c.venueID)
		}
	}
	h.mu.Unlock()

	c.stop()
	_ = c.conn.Close()
	h.logger.Info("Serve: subscriber of venue=%d disconnected", c.venueID)
}

// readLoop читает только управляющие кадры; любая ошибка чтения завершает подписку
func (h *Hub) readLoop(c *client) {
	defer c.stop()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * h.cfg.PingInterval))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * h.cfg.PingInterval))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(h.cfg.WriteTimeout))
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.cfg.WriteTimeout)); err != nil {
				return
			}
		}
	}
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (h *Hub) addClients(delta int) {
	if h.metrics != nil {
		h.metrics.AddRealtimeClients(delta)
	}
}
