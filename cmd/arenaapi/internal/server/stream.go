package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	streamPingInterval = 15 * time.Second
	streamPongWait     = 45 * time.Second
	streamWriteWait    = 10 * time.Second
	streamReadLimit    = 512
)

// newStreamUpgrader accepts handshakes from the server's own origin and from
// the origins the CORS policy allows. The stream is authenticated by cookie,
// so any other browser origin is refused.
func newStreamUpgrader(corsCfg cors.Options) *websocket.Upgrader {
	allowed := make([]string, 0, len(corsCfg.AllowedOrigins))
	for _, o := range corsCfg.AllowedOrigins {
		allowed = append(allowed, strings.ToLower(o))
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
				return true
			}
			if corsCfg.AllowOriginFunc != nil {
				return corsCfg.AllowOriginFunc(r, origin)
			}
			return originAllowed(allowed, strings.ToLower(origin))
		},
	}
}

// originAllowed matches the CORS origin forms: exact, "*", or one "*"
// wildcard inside the origin.
func originAllowed(allowed []string, origin string) bool {
	for _, o := range allowed {
		if o == "*" || o == origin {
			return true
		}
		if prefix, suffix, ok := strings.Cut(o, "*"); ok {
			if len(origin) >= len(prefix)+len(suffix) &&
				strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
				return true
			}
		}
	}
	return false
}

// handleLeaderboardStream pushes a JSON event to the client whenever the
// leaderboard changes. Clients only listen; anything they send is discarded.
// The connection ends when the client goes away, falls behind, or the hub
// stops.
func (s *Server) handleLeaderboardStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("leaderboard stream upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sub := s.opts.Hub.Subscribe()
	defer sub.Close()

	s.opts.Metrics.StreamOpened()
	defer s.opts.Metrics.StreamClosed()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		conn.SetReadLimit(streamReadLimit)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "leaderboard stream closed"),
					time.Now().Add(streamWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}
