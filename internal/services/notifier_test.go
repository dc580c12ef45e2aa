package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"swipe-match-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/sideshow/apns2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePusher struct {
	sent []*apns2.Notification
	res  *apns2.Response
}

func (p *fakePusher) PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error) {
	p.sent = append(p.sent, n)
	return p.res, nil
}

func testMatch() (*models.Match, *models.User, *models.User) {
	token := "device-a"
	a := &models.User{ID: "a", Name: "Ana", Email: "ana@example.com", PushToken: &token}
	b := &models.User{ID: "b", Name: "Bruno", Email: "bruno@example.com"}
	m := &models.Match{ID: "m1", UserAID: "a", UserBID: "b", Status: models.MatchActive, CreatedAt: base}
	return m, a, b
}

func TestAPNSNotifier(t *testing.T) {
	ctx := context.Background()
	m, a, b := testMatch()
	pusher := &fakePusher{res: &apns2.Response{StatusCode: http.StatusOK, ApnsID: "id-1"}}
	n := NewAPNSNotifierWithClient(pusher, "com.example.swipe")

	require.NoError(t, n.NotifyMatch(ctx, m, a, b))
	require.Len(t, pusher.sent, 1)
	assert.Equal(t, "device-a", pusher.sent[0].DeviceToken)
	assert.Equal(t, "com.example.swipe", pusher.sent[0].Topic)

	body, err := json.Marshal(pusher.sent[0].Payload)
	require.NoError(t, err)
	assert.Contains(t, string(body), "It's a match! You and Bruno liked each other.")
	assert.Contains(t, string(body), `"match_id":"m1"`)

	// no device token
	require.NoError(t, n.NotifyMatch(ctx, m, b, a))
	assert.Len(t, pusher.sent, 1)

	pusher.res = &apns2.Response{StatusCode: http.StatusBadRequest, Reason: apns2.ReasonBadDeviceToken}
	assert.Error(t, n.NotifyMatch(ctx, m, a, b))
}

func TestMultiNotifier(t *testing.T) {
	m, a, b := testMatch()
	first := &recordingNotifier{err: errBoom}
	second := &recordingNotifier{}

	err := MultiNotifier{first, nil, second}.NotifyMatch(context.Background(), m, a, b)
	assert.ErrorIs(t, err, errBoom)
	assert.Len(t, first.all(), 1)
	assert.Len(t, second.all(), 1, "later notifiers still run")
}

func TestWSHub_NotifyMatch(t *testing.T) {
	hub := NewWSHub()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(r.URL.Query().Get("user"), conn)
	}))
	defer srv.Close()
	defer hub.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=a"
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool { return hub.IsOnline("a") }, time.Second, 10*time.Millisecond)

	m, a, b := testMatch()
	require.NoError(t, hub.NotifyMatch(context.Background(), m, a, b))
	// offline users are skipped
	require.NoError(t, hub.NotifyMatch(context.Background(), m, b, a))

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Data    struct {
			Match models.Match `json:"match"`
			User  models.User  `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "match_created", msg.Type)
	assert.Equal(t, "It's a match! You and Bruno liked each other.", msg.Message)
	assert.Equal(t, "m1", msg.Data.Match.ID)
	assert.Equal(t, "b", msg.Data.User.ID)
	assert.Empty(t, msg.Data.User.Email)
}
