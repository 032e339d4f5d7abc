package ws

import (
	"crypto/subtle"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

type Handler struct {
	hub    *Hub
	token  string
	logger *log.Logger
}

// NewHandler builds the feed endpoint. A non-empty token must be presented as a bearer
// header or a token query parameter, the same secret the HTTP bridge requires.
func NewHandler(hub *Hub, token string, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{hub: hub, token: token, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameHostOrigin,
}

// sameHostOrigin admits non-browser clients, which send no Origin, and pages served by
// the bridge itself.
func sameHostOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.token == "" {
		return true
	}
	presented := r.URL.Query().Get("token")
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			presented = strings.TrimSpace(parts[1])
		}
	}
	return presented != "" && subtle.ConstantTimeCompare([]byte(presented), []byte(h.token)) == 1
}

// ServeHTTP upgrades the request and attaches the connection to the notification feed. It is
// mounted on the net/http mux next to the fiber app because the upgrade needs to hijack the
// underlying connection.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.hub == nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	if !h.authorized(r) {
		h.logger.Printf("ws | remote=%s status=unauthorized", r.RemoteAddr)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("ws | upgrade error err=%v", err)
		return
	}

	client := NewClient(h.hub, conn)
	h.hub.Register(client)
	go client.WritePump()
	go client.ReadPump()
}
