package relay

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"pubchat/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Browsers are not a target client; native clients send no Origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler builds the relay's HTTP surface: the websocket endpoint plus
// health and metrics routes.
func Handler(h *Hub, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/v1/ws", func(w http.ResponseWriter, req *http.Request) {
		serveWS(h, w, req)
	})
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Client-Instance"},
	})
	return c.Handler(r)
}

func serveWS(h *Hub, w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		logger.Warn("ws_upgrade_failed", "remote", req.RemoteAddr, "error", err)
		return
	}
	c := newClient(h, conn, req.Header.Get("X-Client-Instance"))
	logger.Info("client_connected", "client", c.id, "remote", req.RemoteAddr)
	c.run()
}
