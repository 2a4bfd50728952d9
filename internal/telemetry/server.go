package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/evlease/internal/logging"
	"github.com/muurk/evlease/internal/vehicle"
	"github.com/muurk/evlease/internal/version"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Frames queued per subscriber before new ones are dropped
	sendBuffer = 8

	// DefaultInterval is the default time between telemetry frames
	DefaultInterval = time.Second
)

// Config holds the vehicle server configuration
type Config struct {
	Host      string
	Port      int
	Interval  time.Duration // Time between frames (and simulated time per frame)
	Advertise bool          // Register the service over mDNS
	LogLevel  string
}

// Frame is one telemetry message pushed to subscribers.
type Frame struct {
	Seq     uint64        `json:"seq"`
	SentAt  time.Time     `json:"sentAt"`
	Vehicle vehicle.State `json:"vehicle"`
}

type subscriber struct {
	id     string
	remote string
	conn   *websocket.Conn
	send   chan Frame
}

// Server streams simulated vehicle state to WebSocket subscribers
type Server struct {
	config      *Config
	sim         *vehicle.Simulator
	router      chi.Router
	upgrader    websocket.Upgrader
	httpServer  *http.Server
	listener    net.Listener
	advert      *zeroconf.Server
	wg          sync.WaitGroup
	mu          sync.Mutex
	subscribers map[string]*subscriber
	seq         uint64
	stopping    bool
	stop        chan struct{}
	stopOnce    sync.Once
}

// New creates a new Server publishing the simulator's state
func New(config *Config, sim *vehicle.Simulator) (*Server, error) {
	if err := logging.Initialize(config.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	if sim == nil {
		return nil, errors.New("simulator is required")
	}
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}

	s := &Server{
		config:      config,
		sim:         sim,
		subscribers: make(map[string]*subscriber),
		stop:        make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get(TelemetryPath, s.handleTelemetry)
	r.Get("/snapshot", s.handleSnapshot)
	r.Get("/healthz", s.handleHealth)
	return r
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the server and blocks until shutdown
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	logging.Info("Starting vehicle telemetry server",
		zap.String("addr", addr),
		zap.Duration("interval", s.config.Interval),
		zap.Bool("advertise", s.config.Advertise),
		zap.String("log_level", s.config.LogLevel),
	)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info("Server listening for connections",
		zap.String("addr", listener.Addr().String()),
	)

	if s.config.Advertise {
		port := listener.Addr().(*net.TCPAddr).Port
		advert, err := Advertise(port, s.sim.State())
		if err != nil {
			// Streaming still works by explicit URL
			logging.Warn("Failed to advertise over mDNS", zap.Error(err))
		} else {
			s.advert = advert
		}
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
			return
		}
		errChan <- nil
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run()
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		_ = s.Shutdown(context.Background())
		return err
	}
}

// Addr returns the listening address once Start has bound it
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// run pushes a frame every interval until the server stops
func (s *Server) run() {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Broadcast(s.config.Interval)
		case <-s.stop:
			return
		}
	}
}

// Broadcast advances the simulator by dt and queues the resulting frame for
// every subscriber. Subscribers whose queue is full miss the frame.
func (s *Server) Broadcast(dt time.Duration) Frame {
	state := s.sim.Step(dt)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	frame := Frame{Seq: s.seq, SentAt: time.Now().UTC(), Vehicle: state}
	for _, sub := range s.subscribers {
		select {
		case sub.send <- frame:
		default:
			logging.Debug("Subscriber queue full, dropping frame",
				zap.String("subscriber", sub.id),
				zap.Uint64("seq", frame.Seq),
			)
		}
	}
	return frame
}

// Subscribers returns the number of connected subscribers
func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stopping := s.stopping
	if !stopping {
		s.wg.Add(1)
	}
	s.mu.Unlock()
	if stopping {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.wg.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	sub := &subscriber{
		id:     uuid.NewString(),
		remote: r.RemoteAddr,
		conn:   conn,
		send:   make(chan Frame, sendBuffer),
	}

	// New subscribers get the current state straight away
	s.mu.Lock()
	sub.send <- Frame{Seq: s.seq, SentAt: time.Now().UTC(), Vehicle: s.sim.State()}
	s.subscribers[sub.id] = sub
	s.mu.Unlock()

	logging.LogTelemetry(sub.id, "subscribed", zap.String("remote_addr", sub.remote))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.writePump(sub)
	}()

	s.readPump(sub)

	s.mu.Lock()
	delete(s.subscribers, sub.id)
	close(sub.send)
	s.mu.Unlock()

	logging.LogTelemetry(sub.id, "unsubscribed", zap.String("remote_addr", sub.remote))
}

// readPump discards client messages and returns once the peer goes away
func (s *Server) readPump(sub *subscriber) {
	sub.conn.SetReadLimit(maxMessageSize)
	_ = sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Debug("Subscriber read error",
					zap.String("subscriber", sub.id),
					zap.Error(err),
				)
			}
			return
		}
	}
}

func (s *Server) writePump(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = sub.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteJSON(frame); err != nil {
				logging.Debug("Subscriber write failed",
					zap.String("subscriber", sub.id),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sim.State())
}

// Health is the /healthz response body
type Health struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Subscribers int    `json:"subscribers"`
	Seq         uint64 `json:"seq"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	h := Health{Status: "ok", Version: version.Version, Subscribers: len(s.subscribers), Seq: s.seq}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, h)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to encode response", zap.Error(err))
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	s.stopOnce.Do(func() { close(s.stop) })

	if s.advert != nil {
		s.advert.Shutdown()
		s.advert = nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			logging.Error("Error closing listener", zap.Error(err))
		}
	}

	// Hijacked connections are not closed by http.Server.Shutdown
	s.mu.Lock()
	s.stopping = true
	for id, sub := range s.subscribers {
		logging.LogTelemetry(id, "closing", zap.String("remote_addr", sub.remote))
		_ = sub.conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All subscribers closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	case <-time.After(10 * time.Second):
		logging.Warn("Shutdown timeout after 10 seconds, forcing close")
	}

	logging.Sync()

	return nil
}
