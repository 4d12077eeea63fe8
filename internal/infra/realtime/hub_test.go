package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
	"github.com/m04kA/FitKits-SlotService/pkg/logger"
)

func startServer(t *testing.T, hub *Hub, venueID int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, venueID)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHub_DeliversEventsToVenueSubscribers(t *testing.T) {
	hub := NewHub(Config{}, nil, logger.Nop())
	defer hub.Close()

	conn := dial(t, startServer(t, hub, 1))
	other := dial(t, startServer(t, hub, 2))

	require.Eventually(t, func() bool {
		return hub.Subscribers(1) == 1 && hub.Subscribers(2) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish(domain.SlotEvent{Kind: domain.SlotEventBlocked, VenueID: 1, Date: "2025-06-10", Times: []string{"10:00"}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event domain.SlotEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, domain.SlotEventBlocked, event.Kind)
	assert.Equal(t, []string{"10:00"}, event.Times)

	// Подписчик другой площадки ничего не получает
	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err)
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub := NewHub(Config{}, nil, logger.Nop())
	defer hub.Close()

	conn := dial(t, startServer(t, hub, 1))
	require.Eventually(t, func() bool { return hub.Subscribers(1) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Subscribers(1) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub(Config{}, nil, logger.Nop())
	srv := startServer(t, hub, 1)
	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Subscribers(1) == 1 }, time.Second, 10*time.Millisecond)

	hub.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)

	// Новые подписки после остановки отклоняются до upgrade
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, _, err = websocket.DefaultDialer.Dial(url, nil)
	assert.Error(t, err)
}

func TestHub_CheckOrigin(t *testing.T) {
	hub := NewHub(Config{AllowedOrigins: []string{"https://admin.fitkits.app"}}, nil, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://admin.fitkits.app")
	assert.True(t, hub.checkOrigin(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, hub.checkOrigin(req))

	open := NewHub(Config{}, nil, logger.Nop())
	assert.True(t, open.checkOrigin(req))
}
