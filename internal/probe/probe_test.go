package probe

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kubenetlabs/pipeline-demo/internal/config"
	"github.com/kubenetlabs/pipeline-demo/internal/server"
)

func TestCheck_AgainstServer(t *testing.T) {
	srv := server.New(config.Default())
	ts := httptest.NewServer(srv.Router)
	defer ts.Close()

	if err := Check(context.Background(), ts.Client(), ts.URL+"/health"); err != nil {
		t.Fatalf("Check() error: %v", err)
	}
}

func TestCheck_Failures(t *testing.T) {
	tests := []struct {
		name          string
		handler       http.HandlerFunc
		wantUnhealthy bool
		wantErr       string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantUnhealthy: true,
			wantErr:       "status 500",
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("ok"))
			},
			wantUnhealthy: true,
			wantErr:       "decoding body",
		},
		{
			name: "wrong status field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"degraded"}`))
			},
			wantUnhealthy: true,
			wantErr:       `"degraded"`,
		},
		{
			name: "landing page instead of health",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.Write([]byte("<html></html>"))
			},
			wantUnhealthy: true,
			wantErr:       "decoding body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			err := Check(context.Background(), ts.Client(), ts.URL)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrUnhealthy); got != tt.wantUnhealthy {
				t.Errorf("errors.Is(err, ErrUnhealthy) = %v, want %v", got, tt.wantUnhealthy)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestCheck_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	err = Check(context.Background(), nil, "http://"+addr+"/health")
	if err == nil {
		t.Fatal("expected connection error")
	}
	if errors.Is(err, ErrUnhealthy) {
		t.Error("transport failures should not be reported as ErrUnhealthy")
	}
}

func TestCheck_Timeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := Check(ctx, ts.Client(), ts.URL)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestCheck_SendsUserAgent(t *testing.T) {
	var ua string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer ts.Close()

	if err := Check(context.Background(), ts.Client(), ts.URL); err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if !strings.HasPrefix(ua, "pipeline-demo-probe/") {
		t.Errorf("unexpected User-Agent %q", ua)
	}
}
