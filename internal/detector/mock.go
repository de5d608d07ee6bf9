package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/motioncam/internal/motion"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu        sync.Mutex
	detection motion.Detection
	err       error
	calls     int
	closed    bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetCandidates makes Detect select from candidates with the given minimum area.
func (m *MockDetector) SetCandidates(candidates []motion.Region, minArea float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.detection = motion.Detect(candidates, minArea)
}

// SetDetection sets the detection that will be returned by Detect.
func (m *MockDetector) SetDetection(d motion.Detection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.detection = d
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
}

// Detect returns the pre-configured detection or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (motion.Detection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return motion.Detection{}, m.err
	}
	return m.detection, nil
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls
}

// Closed reports whether Close has been called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closed
}

// Close marks the mock as closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}
