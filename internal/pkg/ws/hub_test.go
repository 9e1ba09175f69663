package ws

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
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	assert.NotNil(t, hub)
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHub_IsOnline_NoConnections(t *testing.T) {
	hub := NewHub()

	assert.False(t, hub.IsOnline(123))
}

func TestHub_SendToUser_UserNotOnline(t *testing.T) {
	hub := NewHub()

	msg := &Message{
		Type: "payment_result",
		Data: map[string]string{"status": "completed"},
	}

	// 用户不在线不算错误
	err := hub.SendToUser(123, msg)
	assert.NoError(t, err)
}

func TestHub_RegisterAndSend(t *testing.T) {
	hub := NewHub()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		client := &Client{UserID: 7, Conn: conn}
		hub.Register(client)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// 等待服务端注册完成
	deadline := time.Now().Add(time.Second)
	for !hub.IsOnline(7) && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, hub.IsOnline(7))
	assert.Equal(t, 1, hub.ConnectionCount())

	err = hub.SendToUser(7, &Message{
		Type: "payment_result",
		Data: map[string]interface{}{"payment_id": 42, "status": "completed"},
	})
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "payment_result", msg.Type)
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub()

	client := &Client{UserID: 9}
	hub.Register(client)
	assert.True(t, hub.IsOnline(9))

	hub.Unregister(client)
	assert.False(t, hub.IsOnline(9))
	assert.Equal(t, 0, hub.ConnectionCount())

	// 重复注销无副作用
	hub.Unregister(client)
	assert.Equal(t, 0, hub.ConnectionCount())
}
