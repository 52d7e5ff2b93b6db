// Package frontdoor is the per-connection request dispatcher: it either
// serves a static file from the configured web root or upgrades the
// connection to the framed-message protocol and hands it off to a new
// desktop.Session.
package frontdoor

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/deskbridge/server/internal/desktop"
)

// Server header value sent on every HTTP response, matching the reference
// implementation's practice of identifying itself via the Server field.
const serverHeader = "deskbridge"

// SessionFactory constructs and runs a desktop.Session for a newly upgraded
// connection. Handler calls it in a new goroutine per connection.
type SessionFactory func(id string, conn *websocket.Conn)

// Handler is the single net/http.Handler mounted at "/": it upgrades any
// request that looks like a WebSocket handshake, and otherwise serves files
// out of webRoot.
type Handler struct {
	webRoot    string
	newSession SessionFactory
	upgrader   websocket.Upgrader

	nextID atomic.Uint64
}

func NewHandler(webRoot string, newSession SessionFactory) *Handler {
	return &Handler{
		webRoot:    webRoot,
		newSession: newSession,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Server", serverHeader)

	if websocket.IsWebSocketUpgrade(r) {
		h.handleUpgrade(w, r)
		return
	}
	h.handleStatic(w, r)
}

func (h *Handler) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("frontdoor: websocket upgrade failed", "error", err)
		return
	}
	id := fmt.Sprintf("sess-%d", h.nextID.Add(1))
	go h.newSession(id, conn)
}

func (h *Handler) handleStatic(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	fullPath := filepath.Join(h.webRoot, filepath.Clean("/"+path))
	data, err := os.ReadFile(fullPath)
	if err != nil {
		writeNotFound(w, path)
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(path))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// writeNotFound matches the reference implementation's exact 404 body
// format so clients that scrape it for diagnostics keep working.
func writeNotFound(w http.ResponseWriter, path string) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, "The resource '%s' was not found.", path)
}

func contentTypeFor(path string) string {
	switch {
	case strings.HasSuffix(path, ".html"):
		return "text/html"
	case strings.HasSuffix(path, ".js"):
		return "application/javascript"
	case strings.HasSuffix(path, ".css"):
		return "text/css"
	default:
		return "application/octet-stream"
	}
}

// NewSessionFactory adapts desktop.NewSession + desktop.Session.Run into a
// SessionFactory, so main() doesn't need to know about frontdoor's internal
// goroutine-per-connection shape.
func NewSessionFactory(cfg desktop.SessionConfig) SessionFactory {
	return func(id string, conn *websocket.Conn) {
		defer conn.Close()

		sess, err := desktop.NewSession(id, cfg, conn)
		if err != nil {
			slog.Warn("frontdoor: session start failed", "session", id, "error", err)
			return
		}
		sess.Run(context.Background())
	}
}
