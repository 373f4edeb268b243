package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/eljog/tracegraph/internal/config"
)

func TestSplitOrigins(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"https://a.example.com", []string{"https://a.example.com"}},
		{" https://a.example.com , https://b.example.com ", []string{"https://a.example.com", "https://b.example.com"}},
		{",,", nil},
	}
	for _, tc := range cases {
		if got := SplitOrigins(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("SplitOrigins(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestServerRunShutsDownOnContextCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(logger, config.HTTPConfig{
		Host:            "127.0.0.1",
		Port:            0,
		ShutdownTimeout: time.Second,
	}, http.NewServeMux())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run returned %v after cancellation", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
