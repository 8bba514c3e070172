package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/unkitsingh0/Multiplayer-Tic-Tac-Toe/internal/entity"
	"github.com/unkitsingh0/Multiplayer-Tic-Tac-Toe/internal/usecase"
)

type roomManager interface {
	CreateRoom(ctx context.Context, connID string) (*entity.Room, error)
	JoinRoom(ctx context.Context, code, connID string) (*entity.Room, string, error)
	MakeMove(ctx context.Context, code, connID, claimedMark string, cell int) (*entity.Room, error)
	ResetGame(ctx context.Context, code string) (*entity.Room, error)
	RemoveConnection(ctx context.Context, connID string) ([]usecase.Departure, error)
}

type Server struct {
	logger   *slog.Logger
	rooms    roomManager
	gateway  *Gateway
	upgrader websocket.Upgrader

	handlers map[string]func(ctx context.Context, connID string, message *Message) error
}

func New(logger *slog.Logger, rooms roomManager) *Server {
	server := &Server{
		logger:  logger,
		rooms:   rooms,
		gateway: NewGateway(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},

		handlers: make(map[string]func(context.Context, string, *Message) error),
	}

	server.handlers[EventCreateRoom] = server.handleCreateRoom
	server.handlers[EventJoinRoom] = server.handleJoinRoom
	server.handlers[EventMakeMove] = server.handleMakeMove
	server.handlers[EventResetGame] = server.handleResetGame

	return server
}

// Start - starts the WebSocket server and shuts it down when ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
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

// serveConnection - upgrades the connection and processes its messages until
// it drops. Every connection gets its own transient id; nothing about it
// outlives the socket.
func (that *Server) serveConnection(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	that.gateway.Register(connID, conn)

	log = log.With("connID", connID)
	log.Info("WebSocket connection established")

	that.handleMessages(ctx, connID, conn)

	that.handleDisconnect(ctx, connID)
}

// handleMessages - dispatches incoming messages by event until a read error.
// A malformed or unknown message is dropped; the connection stays up.
func (that *Server) handleMessages(ctx context.Context, connID string, conn *websocket.Conn) {
	log := that.logger.With("method", "handleMessages", "connID", connID)

	for {
		_, reqBody, err := conn.ReadMessage()
		if err != nil {
			log.Info("connection closed", "error", err)
			return
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Event]
		if !ok {
			log.Error("unknown event", "event", message.Event)
			continue
		}

		if err = handler(ctx, connID, &message); err != nil {
			log.Error("error processing message", "event", message.Event, "error", err)
		}
	}
}
