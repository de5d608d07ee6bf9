package server

import (
	"errors"
	"net/http"
	"sync"

	"github.com/hybridgroup/mjpeg"
	"gocv.io/x/gocv"
)

var errStreamClosed = errors.New("stream closed")

// Stream serves processed frames as MJPEG. It receives frames from the
// watch loop through WriteFrame.
type Stream struct {
	stream *mjpeg.Stream

	mu      sync.RWMutex
	last    []byte
	frames  int
	clients int

	done      chan struct{}
	closeOnce sync.Once
}

// NewStream creates an empty stream.
func NewStream() *Stream {
	return &Stream{
		stream: mjpeg.NewStream(),
		done:   make(chan struct{}),
	}
}

// WriteFrame encodes frame as JPEG and publishes it to connected clients.
func (s *Stream) WriteFrame(frame gocv.Mat) {
	if frame.Empty() {
		return
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return
	}
	jpeg := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	s.stream.UpdateJPEG(jpeg)

	s.mu.Lock()
	s.last = jpeg
	s.frames++
	s.mu.Unlock()
}

// Frames returns how many frames have been published.
func (s *Stream) Frames() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames
}

// Clients returns how many MJPEG clients are connected.
func (s *Stream) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clients
}

// Close ends every MJPEG response and refuses new ones.
func (s *Stream) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// ServeHTTP streams MJPEG frames to connected clients until the client goes
// away or the stream is closed.
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	select {
	case <-s.done:
		http.Error(w, "Stream closed", http.StatusServiceUnavailable)
		return
	default:
	}

	s.mu.Lock()
	s.clients++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.clients--
		s.mu.Unlock()
	}()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace;boundary=MJPEGBOUNDARY")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	// mjpeg blocks until the next frame, so it writes through a gate that
	// is shut once this handler returns.
	gate := &gatedWriter{w: w, header: make(http.Header)}
	served := make(chan struct{})
	go func() {
		defer close(served)
		s.stream.ServeHTTP(gate, r)
	}()

	select {
	case <-served:
	case <-r.Context().Done():
	case <-s.done:
	}
	gate.shut()
}

// ServeFrame serves the latest frame as a single JPEG.
func (s *Stream) ServeFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	jpeg := s.last
	s.mu.RUnlock()

	if jpeg == nil {
		http.Error(w, "No frame yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(jpeg)
}

// gatedWriter forwards writes to w until shut. Headers go to a private map
// since the real ones are already sent.
type gatedWriter struct {
	mu     sync.Mutex
	w      http.ResponseWriter
	header http.Header
	closed bool
}

func (g *gatedWriter) Header() http.Header {
	return g.header
}

func (g *gatedWriter) WriteHeader(int) {}

func (g *gatedWriter) Write(p []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return 0, errStreamClosed
	}
	n, err := g.w.Write(p)
	if f, ok := g.w.(http.Flusher); ok && err == nil {
		f.Flush()
	}
	return n, err
}

func (g *gatedWriter) shut() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}
