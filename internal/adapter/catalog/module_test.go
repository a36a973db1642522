package catalog

import (
	"testing"

	"github.com/grocerline/basketd/internal/config"
)

func TestNewClientUsesConfig(t *testing.T) {
	cfg := &config.Config{CatalogAddress: "http://example.com"}
	client, err := newClient(clientParams{Config: cfg, Logger: testLogger()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client == nil {
		t.Fatal("expected client instance")
	}

	cfg = &config.Config{CatalogAddress: "not-absolute"}
	if _, err := newClient(clientParams{Config: cfg, Logger: testLogger()}); err == nil {
		t.Fatal("expected error for bad address")
	}
}
