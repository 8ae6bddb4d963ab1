// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestGenerateRequestID(t *testing.T) {
	t.Parallel()

	id1 := GenerateRequestID()
	id2 := GenerateRequestID()

	if id1 == "" || id2 == "" {
		t.Error("expected non-empty request IDs")
	}
	if id1 == id2 {
		t.Error("expected unique request IDs")
	}
	if len(id1) != 36 {
		t.Errorf("expected UUID length 36, got %d", len(id1))
	}
}

func TestContextWithRequestID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctx = ContextWithRequestID(ctx, "req-123")

	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("expected 'req-123', got %q", got)
	}
}

func TestContextWithNewRequestID(t *testing.T) {
	t.Parallel()

	ctx := ContextWithNewRequestID(context.Background())

	if RequestIDFromContext(ctx) == "" {
		t.Error("expected generated request ID in context")
	}
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	t.Parallel()

	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty string for missing request ID, got %q", got)
	}
}

func TestContextWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := ContextWithLogger(context.Background(), logger)
	stored := LoggerFromContext(ctx)

	stored.Info().Msg("stored logger message")
	if !strings.Contains(buf.String(), "stored logger message") {
		t.Errorf("expected message from stored logger, got: %s", buf.String())
	}
}

func TestLoggerFromContext_FallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	logger := LoggerFromContext(context.Background())
	logger.Info().Msg("global fallback")

	if !strings.Contains(buf.String(), "global fallback") {
		t.Errorf("expected global logger output, got: %s", buf.String())
	}
}

func TestCtx_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))
	ctx = ContextWithRequestID(ctx, "req-456")

	Ctx(ctx).Info().Msg("with request id")

	output := buf.String()
	if !strings.Contains(output, "req-456") {
		t.Errorf("expected request_id in output: %s", output)
	}
	if !strings.Contains(output, "request_id") {
		t.Errorf("expected request_id field in output: %s", output)
	}
}

func TestCtx_NoRequestID(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))

	Ctx(ctx).Info().Msg("plain")

	output := buf.String()
	if strings.Contains(output, "request_id") {
		t.Errorf("did not expect request_id field in output: %s", output)
	}
}

func TestCtxWith(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))
	ctx = ContextWithRequestID(ctx, "req-789")

	logger := CtxWith(ctx).Str("user_id", "u1").Logger()
	logger.Info().Msg("user action")

	output := buf.String()
	if !strings.Contains(output, "req-789") {
		t.Errorf("expected request_id in output: %s", output)
	}
	if !strings.Contains(output, "u1") {
		t.Errorf("expected user_id in output: %s", output)
	}
}

func TestCtxShorthands(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), zerolog.New(&buf))
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	tests := []struct {
		name    string
		logFunc func()
		level   string
	}{
		{"CtxDebug", func() { CtxDebug(ctx).Msg("d") }, "debug"},
		{"CtxInfo", func() { CtxInfo(ctx).Msg("i") }, "info"},
		{"CtxWarn", func() { CtxWarn(ctx).Msg("w") }, "warn"},
		{"CtxErr", func() { CtxErr(ctx, &testError{msg: "boom"}).Msg("e") }, "error"},
	}

	for _, tt := range tests {
		buf.Reset()
		tt.logFunc()
		if !strings.Contains(buf.String(), tt.level) {
			t.Errorf("%s: expected level %q in output: %s", tt.name, tt.level, buf.String())
		}
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	logger := WithComponent("outfit")
	logger.Info().Msg("component log")

	output := buf.String()
	if !strings.Contains(output, "outfit") {
		t.Errorf("expected component field in output: %s", output)
	}
}
