// Package preview serves a live view of the LED output: websocket streams of
// frames and diagnostics, a control socket, health JSON and Prometheus metrics.
package preview

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	diag "github.com/coreman2200/borderlight/internal/diagnostics"
	"github.com/coreman2200/borderlight/internal/layout"
	"github.com/coreman2200/borderlight/internal/pixel"
)

// Control is a request from the control socket. Nil fields are left alone.
type Control struct {
	RunTest     string `json:"runTest,omitempty"`
	Luminosity  *int   `json:"luminosity,omitempty"`
	FadingSpeed *int   `json:"fadingSpeed,omitempty"`
}

// Server is also a render driver: every frame written to it is broadcast to
// the frame sockets, throttled.
type Server struct {
	mu          sync.RWMutex
	layout      *layout.Layout
	driver      string
	frameID     uint64
	startTime   time.Time
	lastEmit    time.Time
	throttle    time.Duration
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
	// wmu serializes socket writes.
	wmu sync.Mutex

	control chan Control
	gather  prometheus.Gatherer
	log     zerolog.Logger
}

func New(l *layout.Layout, driver string, gather prometheus.Gatherer, log zerolog.Logger) *Server {
	return &Server{
		layout:      l,
		driver:      driver,
		startTime:   time.Now(),
		throttle:    50 * time.Millisecond, // ~20 FPS to UI
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
		control:     make(chan Control, 8),
		gather:      gather,
		log:         log,
	}
}

// Controls delivers control requests; the frame loop drains it between frames.
func (s *Server) Controls() <-chan Control { return s.control }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleFramesWS)
	mux.HandleFunc("/diag", s.HandleDiagWS)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/layout", s.HandleLayout)
	if s.gather != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))
	}
	return withCORS(mux)
}

// Write counts the frame and broadcasts it unless one went out within the
// throttle interval.
func (s *Server) Write(buf []pixel.RGB) error {
	s.mu.Lock()
	s.frameID++
	now := time.Now()
	if s.lastEmit.Add(s.throttle).After(now) {
		s.mu.Unlock()
		return nil
	}
	s.lastEmit = now
	s.mu.Unlock()

	rgb := make([]byte, 3*len(buf))
	for i, c := range buf {
		rgb[3*i], rgb[3*i+1], rgb[3*i+2] = c.Bytes(255)
	}
	s.broadcastFrame(rgb)
	return nil
}

// Push implements diagnostics.Sink.
func (s *Server) Push(d diag.Diagnostic) {
	b, _ := json.Marshal(d)
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.wmu.Lock()
	defer s.wmu.Unlock()
	for c := range s.diagClients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	s.sendTopology(conn)
	go s.drain(conn, s.clients)
}

func (s *Server) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.diagClients[conn] = true
	s.mu.Unlock()
	go s.drain(conn, s.diagClients)
}

// drain reads until the peer goes away, then forgets conn.
func (s *Server) drain(conn *websocket.Conn, set map[*websocket.Conn]bool) {
	defer func() {
		s.mu.Lock()
		delete(set, conn)
		s.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Control
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Debug().Err(err).Msg("bad control message")
			continue
		}
		select {
		case s.control <- msg:
		default:
			s.log.Warn().Msg("control queue full; dropping request")
		}
	}
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"count":    s.layout.Count(),
		"driver":   s.driver,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) HandleLayout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.topology())
}

type topology struct {
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Driver  string   `json:"driver"`
	Regions [][2]int `json:"regions"`
	LEDs    []int    `json:"leds"`
}

func (s *Server) topology() topology {
	l := s.layout
	t := topology{
		Width:   l.Screen.Width,
		Height:  l.Screen.Height,
		Driver:  s.driver,
		Regions: make([][2]int, len(l.Regions)),
		LEDs:    make([]int, len(l.LEDs)),
	}
	for i, r := range l.Regions {
		t.Regions[i] = [2]int{r.Start, r.End}
	}
	for i, led := range l.LEDs {
		t.LEDs[i] = led.Position
	}
	return t
}

func (s *Server) sendTopology(conn *websocket.Conn) {
	b, _ := json.Marshal(s.topology())
	s.wmu.Lock()
	defer s.wmu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

func (s *Server) broadcastFrame(rgb []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type frame struct {
		T       int64  `json:"t"`
		FrameID uint64 `json:"frame_id"`
		RGB     []byte `json:"rgb"`
	}
	b, _ := json.Marshal(frame{T: time.Now().UnixNano(), FrameID: s.frameID, RGB: rgb})
	s.wmu.Lock()
	defer s.wmu.Unlock()
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			s.log.Debug().Err(err).Msg("write frame")
		}
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
