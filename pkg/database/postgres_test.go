package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/wonny/rebalancer/pkg/config"
)

func TestNew(t *testing.T) {
	// Skip if TEST_DATABASE_URL is not set
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			URL:             url,
			MaxConns:        2,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: time.Minute,
		},
	}

	db, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		t.Errorf("Failed to ping database: %v", err)
	}
}

func TestNew_InvalidURL(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{URL: "postgres://localhost:notaport/db", MaxConns: 1},
	}

	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("Expected error for invalid database URL")
	}
}
