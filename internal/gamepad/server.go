package gamepad

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/half-shot/matrix-poweredup/pkg/log"
	"github.com/half-shot/matrix-poweredup/pkg/options"
)

//go:embed web
var webFS embed.FS

// Sample is one message from the page.
type Sample struct {
	// Gamepad is the browser's gamepad id, for logs.
	Gamepad string    `json:"gamepad,omitempty"`
	Axes    []float64 `json:"axes"`
}

// Server serves the controller page and its websocket.
type Server struct {
	server          *http.Server
	shutdownTimeout time.Duration

	translator *Translator
	sender     *Sender
	upgrader   websocket.Upgrader
}

func NewServer(opts *options.HttpOptions, translator *Translator, sender *Sender) *Server {
	s := &Server{
		shutdownTimeout: opts.ShutdownTimeout,
		translator:      translator,
		sender:          sender,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	static, _ := fs.Sub(webFS, "web")

	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWebsocket).Methods(http.MethodGet)
	r.PathPrefix("/").Handler(http.FileServer(http.FS(static))).Methods(http.MethodGet)

	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	log.Info("Starting gamepad server", "addr", s.server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeout := s.shutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	log.Info("Gamepad page connected", "remote", r.RemoteAddr)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("Websocket closed", "error", err)
			}
			return
		}

		var sample Sample
		if err := json.Unmarshal(data, &sample); err != nil {
			log.Warn("Ignoring malformed sample", "error", err)
			continue
		}

		cmds := s.translator.Translate(sample.Axes)
		sent, err := s.sender.Send(ctx, cmds)
		s.translator.Commit(cmds[:sent])
		if err != nil {
			log.Error(err, "Failed to send gamepad event", "gamepad", sample.Gamepad)
			_ = conn.WriteJSON(map[string]string{"error": err.Error()})
		}
	}
}
