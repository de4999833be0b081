package services_test

import (
	"context"
	"testing"

	"quire/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithChapter(ctx, 7)
	ctx = services.WithStage(ctx, "extract")
	ctx = services.WithRunID(ctx, "run-123")

	if n, ok := services.ChapterFromContext(ctx); !ok || n != 7 {
		t.Fatalf("unexpected chapter: %v %v", n, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "extract" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RunIDFromContext(ctx); !ok || rid != "run-123" {
		t.Fatalf("unexpected run id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithChapter(ctx, 0)
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.ChapterFromContext(ctx); ok {
		t.Fatal("expected no chapter value")
	}
}
