package observability

import (
	"context"
	"io"
	"testing"

	"newsclip/internal/config"
	"newsclip/internal/logger"
)

func TestInitTracer_Disabled(t *testing.T) {
	log := logger.NewLoggerWithWriter(io.Discard, "debug")

	shutdown, err := InitTracer(context.Background(), config.TracingConfig{Enabled: false}, "test", log)
	if err != nil {
		t.Fatalf("InitTracer failed: %v", err)
	}

	if err := shutdown(context.Background()); err != nil {
		t.Errorf("Expected no-op shutdown, got %v", err)
	}
}
