package services_test

import (
	"context"
	"testing"

	"videoengine/internal/services"
)

func TestStageAndRequestIDRoundTrip(t *testing.T) {
	ctx := services.WithRequestID(services.WithStage(context.Background(), "probe"), "run-42")
	ctx = services.WithStage(ctx, "encode")

	stage, ok := services.StageFromContext(ctx)
	if !ok || stage != "encode" {
		t.Fatalf("stage = %q (%v), want encode", stage, ok)
	}
	id, ok := services.RequestIDFromContext(ctx)
	if !ok || id != "run-42" {
		t.Fatalf("request id = %q (%v), want run-42", id, ok)
	}
}

func TestEmptyValuesAreIgnored(t *testing.T) {
	base := context.Background()
	if ctx := services.WithStage(base, ""); ctx != base {
		t.Fatal("blank stage should return the original context")
	}
	if ctx := services.WithRequestID(base, ""); ctx != base {
		t.Fatal("blank request id should return the original context")
	}
	if _, ok := services.StageFromContext(base); ok {
		t.Fatal("unexpected stage on empty context")
	}
	if _, ok := services.RequestIDFromContext(base); ok {
		t.Fatal("unexpected request id on empty context")
	}
}
