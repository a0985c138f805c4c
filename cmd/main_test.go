package main

import (
	"context"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"
)

// chatStub stands in for the real router; it answers every request with a
// chat-shaped payload.
type chatStub struct{}

func (chatStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"success":true,"response":"ok"}`))
}

func TestStartServer_ShutdownCompletes(t *testing.T) {
	srv := startServer(chatStub{}, "0") // random port
	if srv == nil {
		t.Fatalf("expected server")
	}

	// Give the listener a moment to come up
	time.Sleep(50 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
		t.Fatalf("shutdown err: %v", err)
	}
}

func TestGracefulShutdown_SigtermRunsCleanup(t *testing.T) {
	srv := startServer(chatStub{}, "0")

	cleaned := make(chan struct{})
	go func() {
		gracefulShutdown(context.Background(), srv, func() { close(cleaned) })
	}()

	// Give the goroutine time to register its signal handler
	time.Sleep(50 * time.Millisecond)

	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("find process: %v", err)
	}
	if err := p.Signal(syscall.SIGTERM); err != nil {
		t.Fatalf("signal: %v", err)
	}

	select {
	case <-cleaned:
		// cleanup ran, DB handles would be closed here
	case <-time.After(2 * time.Second):
		t.Fatalf("cleanup not called after SIGTERM")
	}
}
