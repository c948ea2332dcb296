// Package web serves the game to browsers. Frames are pushed over a
// websocket and inputs come back the same way.
package web

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"gridsnake/game"
	"gridsnake/ui"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

//go:embed index.html
var indexHTML []byte

// clientBuffer is how many frames may wait for a slow browser before
// newer ones are dropped for it.
const clientBuffer = 8

const shutdownTimeout = 5 * time.Second

// inputMessage is what browsers send, e.g. {"input":"left"}.
type inputMessage struct {
	Input string `json:"input"`
}

type errorMessage struct {
	Error string `json:"error"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type Server struct {
	driver   ui.Driver
	logger   game.Logger
	engine   *gin.Engine
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	latest  *game.Snapshot
}

func NewServer(d ui.Driver, logger game.Logger) *Server {
	if logger == nil {
		logger = game.NopLogger{}
	}
	s := &Server{
		driver:   d,
		logger:   logger,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:  make(map[*client]struct{}),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/", s.handleIndex)
	r.GET("/snapshot", s.handleSnapshot)
	r.GET("/stats", s.handleStats)
	r.GET("/ws", s.handleWS)
	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Pump copies frames from the driver to every connected browser until the
// frames channel closes or ctx is done.
func (s *Server) Pump(ctx context.Context) {
	frames := s.driver.Frames()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-frames:
			if !ok {
				return
			}
			s.publish(snap)
		}
	}
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}

	go s.Pump(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(fmt.Sprintf("listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeClients()
	return err
}

func (s *Server) publish(snap game.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error(fmt.Sprintf("encoding snapshot: %v", err))
		return
	}
	s.mu.Lock()
	s.latest = &snap
	s.mu.Unlock()
	s.broadcast(data)
}

func (s *Server) broadcast(data []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			s.logger.Warning("client too slow, dropping frame")
		}
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) handleSnapshot(c *gin.Context) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()
	if latest == nil {
		c.JSON(http.StatusServiceUnavailable, errorMessage{Error: "no game running"})
		return
	}
	c.JSON(http.StatusOK, latest)
}

func (s *Server) handleStats(c *gin.Context) {
	board := s.driver.Scoreboard()
	if board == nil {
		c.JSON(http.StatusNotFound, errorMessage{Error: "no scoreboard"})
		return
	}
	c.JSON(http.StatusOK, board.Summary())
}

func (s *Server) handleWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warning(fmt.Sprintf("websocket upgrade: %v", err))
		return
	}
	cl := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	s.register(cl)
	go s.writePump(cl)
	s.readPump(cl)
}

// register adds cl and queues the latest frame for it under one lock so it
// sees neither a gap nor a duplicate.
func (s *Server) register(cl *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[cl] = struct{}{}
	if s.latest != nil {
		if data, err := json.Marshal(s.latest); err == nil {
			cl.send <- data
		}
	}
}

func (s *Server) unregister(cl *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[cl]; ok {
		delete(s.clients, cl)
		close(cl.send)
	}
}

func (s *Server) readPump(cl *client) {
	defer s.unregister(cl)
	for {
		var msg inputMessage
		if err := cl.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warning(fmt.Sprintf("websocket read: %v", err))
			}
			return
		}
		in, err := game.ParseInput(msg.Input)
		if err != nil {
			s.reply(cl, errorMessage{Error: err.Error()})
			continue
		}
		s.driver.Send(in)
	}
}

func (s *Server) reply(cl *client, msg errorMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.clients[cl]; !ok {
		return
	}
	select {
	case cl.send <- data:
	default:
	}
}

func (s *Server) writePump(cl *client) {
	defer cl.conn.Close()
	for data := range cl.send {
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.Warning(fmt.Sprintf("websocket write: %v", err))
			return
		}
	}
	cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Server) closeClients() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for cl := range s.clients {
		cl.conn.Close()
	}
}
