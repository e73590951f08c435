package server

import (
	"net/http/httptest"
	"testing"

	"github.com/TonniAndreev/doteworld-sub001/internal/config"
)

func TestHealthRoute(t *testing.T) {
	s := NewServer(config.Config{JWTSecret: "secret", ServerPort: ":0"}, nil, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 status")
	}
}

func TestRoutesRegistered(t *testing.T) {
	s := NewServer(config.Config{JWTSecret: "secret", ServerPort: ":0"}, nil, nil)

	// unauthenticated requests to protected groups are rejected, not 404
	req := httptest.NewRequest("GET", "/paws/", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode == 404 {
		t.Fatalf("expected paws routes to be registered")
	}
}
