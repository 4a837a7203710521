package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-order-hub/internal/infrastructure/hub"
	"go-order-hub/internal/infrastructure/logger"
)

func TestConnect_StreamsEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := hub.New(logger.NewNop(), hub.WithCleanupInterval(time.Hour))
	require.NoError(t, h.Start(context.Background()))

	r := gin.New()
	InitWebSocketRouter(logger.NewNop(), h, hub.ConnectionOptions{}, r.Group(""))
	srv := httptest.NewServer(r)
	defer srv.Close()
	defer h.Stop(context.Background())

	client, _, err := gorilla.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer client.Close()

	read := func() hub.EventType {
		_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
		var e hub.Event
		require.NoError(t, client.ReadJSON(&e))
		return e.Type
	}

	assert.Equal(t, hub.EventConnected, read())
	require.Len(t, h.GetConnectionsByType("websocket"), 1)

	h.NotifyChange(context.Background())
	assert.Equal(t, hub.EventUpdate, read())

	res, err := http.Get(srv.URL + "/ws/connections")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestConnect_HubNotRunning(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	InitWebSocketRouter(logger.NewNop(), hub.New(logger.NewNop()), hub.ConnectionOptions{}, r.Group(""))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
