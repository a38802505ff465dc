package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).With().Str("component", "cli").Logger()

	ctx := WithContext(context.Background(), logger)
	got := FromContext(ctx)
	got.Info().Msg("hello")

	if !strings.Contains(buf.String(), `"component":"cli"`) {
		t.Fatalf("expected context logger output, got %q", buf.String())
	}
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger
	Logger = zerolog.New(&buf)
	defer func() { Logger = prev }()

	got := FromContext(context.Background())
	got.Info().Msg("global")

	if !strings.Contains(buf.String(), "global") {
		t.Fatalf("expected global logger output, got %q", buf.String())
	}
}
