package ws

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"matrimony-service/internal/observability"
)

// TokenValidator resolves a bearer token to a user id.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}

// NotificationsHandler upgrades authenticated clients onto the notification stream.
type NotificationsHandler struct {
	hub       *Hub
	validator TokenValidator
	upgrader  websocket.Upgrader
}

// NewNotificationsHandler constructs a NotificationsHandler. allowedOrigins
// empty means any origin.
func NewNotificationsHandler(hub *Hub, validator TokenValidator, allowedOrigins []string) *NotificationsHandler {
	return &NotificationsHandler{
		hub:       hub,
		validator: validator,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}
}

// Handle authenticates, upgrades the connection and registers the client.
// Browsers cannot set headers on websocket requests, so ?token= is accepted too.
func (h *NotificationsHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("matrimony-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
	if token == "" {
		token = c.Query("token")
	}

	userID, err := h.validator.ValidateToken(ctx, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromContext(ctx),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(userID, conn, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	log.Info().Str("conn_id", info.ConnID).Str("user_id", userID).Str("ip", info.IP).Msg("notification socket connected")

	// The stream is server-push only; reads just detect the close.
	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveClient(userID, conn)
			observability.DecWSActive()
			observability.IncWSEvent("ws_disconnect")
			log.Info().
				Str("conn_id", info.ConnID).
				Str("user_id", userID).
				Int64("duration_ms", time.Since(info.ConnectedAt).Milliseconds()).
				Str("reason", closeReason).
				Msg("notification socket closed")
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("ws_error")
				}
				return
			}
		}
	}()
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
