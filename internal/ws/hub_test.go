package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matrimony-service/internal/models"
)

type fakeClient struct {
	mu      sync.Mutex
	frames  [][]byte
	failing bool
	closed  bool
}

func (f *fakeClient) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return assert.AnError
	}
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeClient) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.frames...)
}

func (f *fakeClient) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub()
	conn := &fakeClient{}

	hub.AddClient("alice", conn, ConnInfo{UserID: "alice"})
	if len(hub.users) != 1 {
		t.Fatalf("expected user entry to be created")
	}

	hub.RemoveClient("alice", conn)
	if len(hub.users) != 0 {
		t.Fatalf("expected user entry to be removed")
	}
}

func TestHubNotifyDeliversToRecipientOnly(t *testing.T) {
	hub := NewHub()
	alice := &fakeClient{}
	bob := &fakeClient{}
	hub.AddClient("alice", alice, ConnInfo{})
	hub.AddClient("bob", bob, ConnInfo{})

	err := hub.Notify(context.Background(), models.Notification{Type: models.NotifyInterestReceived, RecipientID: "bob", InterestID: "i-1"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(bob.received()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, alice.received())
	var event Event
	require.NoError(t, json.Unmarshal(bob.received()[0], &event))
	assert.Equal(t, "notification", event.Type)
	assert.Equal(t, "i-1", event.Notification.InterestID)
}

func TestHubNotifyDropsBrokenConnections(t *testing.T) {
	hub := NewHub()
	broken := &fakeClient{failing: true}
	hub.AddClient("bob", broken, ConnInfo{})

	err := hub.Notify(context.Background(), models.Notification{RecipientID: "bob"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.Connections("bob") == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, broken.isClosed())
}

// blockingClient holds every write until release is closed.
type blockingClient struct {
	fakeClient
	release chan struct{}
}

func (b *blockingClient) WriteMessage(messageType int, data []byte) error {
	<-b.release
	return b.fakeClient.WriteMessage(messageType, data)
}

func TestHubNotifyDoesNotWaitForSlowConnections(t *testing.T) {
	hub := NewHub()
	slow := &blockingClient{release: make(chan struct{})}
	hub.AddClient("bob", slow, ConnInfo{})
	defer hub.RemoveClient("bob", slow)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < outboxSize*2; i++ {
			_ = hub.Notify(context.Background(), models.Notification{RecipientID: "bob"})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a stalled connection")
	}

	close(slow.release)
	require.Eventually(t, func() bool { return len(slow.received()) > 0 }, time.Second, 5*time.Millisecond)
	assert.LessOrEqual(t, len(slow.received()), outboxSize+1)
}

func TestHubNotifyWithoutConnections(t *testing.T) {
	assert.NoError(t, NewHub().Notify(context.Background(), models.Notification{RecipientID: "nobody"}))
}

type staticValidator map[string]string

func (s staticValidator) ValidateToken(_ context.Context, token string) (string, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", assert.AnError
}

func TestNotificationsHandlerEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	handler := NewNotificationsHandler(hub, staticValidator{"tok": "bob"}, nil)
	r := gin.New()
	r.GET("/ws/notifications", handler.Handle)
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications?token=tok"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Connections("bob") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Notify(context.Background(), models.Notification{Type: models.NotifyInterestAccepted, RecipientID: "bob"}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, models.NotifyInterestAccepted, event.Notification.Type)
}

func TestNotificationsHandlerRejectsBadToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewNotificationsHandler(NewHub(), staticValidator{}, nil)
	r := gin.New()
	r.GET("/ws/notifications", handler.Handle)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/notifications?token=nope", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://app.example")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))
}
