package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/channel"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/server"
)

const shutdownTimeout = 5 * time.Second

type lobby interface {
	Enter(conn channel.Conn) *server.Player
}

type Server struct {
	logger   *slog.Logger
	lobby    lobby
	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, lobby lobby) *Server {
	return &Server{
		logger: logger.With("component", "websocket"),
		lobby:  lobby,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the page is served from elsewhere
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler - returns the mux with the /ws endpoint.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.upgradeToWebSocket)

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection and hands it to the lobby for its whole life.
func (that *Server) upgradeToWebSocket(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		// Upgrade already replied to the client
		log.Debug("failed to upgrade connection", "remote", req.RemoteAddr, "error", err)
		return
	}

	log.Info("WebSocket connection established", "remote", conn.RemoteAddr())

	player := that.lobby.Enter(conn)
	player.Listen()
}
