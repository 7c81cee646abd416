package main

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"network-journal/backend/pkg/config"
	"network-journal/backend/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		Env:             "development",
		Neo4jURI:        "bolt://127.0.0.1:1",
		Neo4jUser:       "neo4j",
		Neo4jPassword:   "password",
		OwnerName:       "Alice",
		ViewportWidth:   320,
		ViewportHeight:  240,
		FrameRate:       30,
		DefaultLayout:   "force",
		ShowLabels:      true,
		ShowGlow:        true,
		NodeSize:        "normal",
		LinkOpacity:     0.6,
		AnimationSpeed:  "normal",
		GravityStrength: "normal",
		SpringStrength:  "normal",
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx, testConfig(), logger.Get()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(20 * time.Second):
		t.Fatal("run did not return after cancellation")
	}
}

func TestRunRejectsBadViewConfig(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLayout = "spiral"

	err := run(context.Background(), cfg, logger.Get())
	require.Error(t, err)
}
