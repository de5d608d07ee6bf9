package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStream_Close_EndsClients(t *testing.T) {
	stream := NewStream()
	ts := httptest.NewServer(stream)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL)
	if err != nil {
		t.Fatalf("GET stream error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "multipart/x-mixed-replace;boundary=MJPEGBOUNDARY" {
		t.Errorf("Content-Type = %s", ct)
	}
	waitFor(t, func() bool { return stream.Clients() == 1 })

	done := make(chan error, 1)
	go func() {
		_, err := io.ReadAll(resp.Body)
		done <- err
	}()

	stream.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("reading stream error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream response did not end after Close")
	}
	waitFor(t, func() bool { return stream.Clients() == 0 })

	resp2, err := ts.Client().Get(ts.URL)
	if err != nil {
		t.Fatalf("GET closed stream error = %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", resp2.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestStream_ClientDisconnect(t *testing.T) {
	stream := NewStream()
	ts := httptest.NewServer(stream)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET stream error = %v", err)
	}
	defer resp.Body.Close()

	waitFor(t, func() bool { return stream.Clients() == 1 })
	cancel()
	waitFor(t, func() bool { return stream.Clients() == 0 })
}

func TestServer_Serve_ShutdownWithStreamClient(t *testing.T) {
	stream := NewStream()
	srv := New(Config{Stream: stream, Hub: NewHub(nil)})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/stream")
	if err != nil {
		t.Fatalf("GET /api/stream error = %v", err)
	}
	defer resp.Body.Close()
	waitFor(t, func() bool { return stream.Clients() == 1 })

	start := time.Now()
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
		if elapsed := time.Since(start); elapsed >= shutdownTimeout {
			t.Errorf("shutdown took %v", elapsed)
		}
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestServer_Serve_ForcesCloseAfterTimeout(t *testing.T) {
	srv := New(Config{})
	srv.shutdownTimeout = 50 * time.Millisecond

	release := make(chan struct{})
	defer close(release)
	entered := make(chan struct{})
	srv.mux.HandleFunc("/block", func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	go http.Get("http://" + ln.Addr().String() + "/block")
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after the shutdown timeout")
	}
}
