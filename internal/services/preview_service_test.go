package services

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/trainforge/trainforge-backend/internal/data/repos"
	"github.com/trainforge/trainforge-backend/internal/data/repos/testutil"
	"github.com/trainforge/trainforge-backend/internal/domain/faults"
	"github.com/trainforge/trainforge-backend/internal/platform/gcs"
)

type previewHarness struct {
	*harness

	bucket   *fakeBucket
	previews PreviewService
}

func newPreviewHarness(t *testing.T) (context.Context, *previewHarness) {
	t.Helper()
	t.Setenv("PREVIEW_FONT", "")

	ctx, h := newHarness(t)
	log := testutil.Logger(t)

	bucket := newFakeBucket()
	previews, err := NewPreviewService(h.tx, log, repos.NewMaterialRepo(h.tx, log), bucket)
	if err != nil {
		t.Fatalf("new preview service: %v", err)
	}
	return ctx, &previewHarness{harness: h, bucket: bucket, previews: previews}
}

func decodeStoredPreview(t *testing.T, h *previewHarness, key string) image.Image {
	t.Helper()
	raw, ok := h.bucket.object(gcs.BucketCategoryPreview, key)
	if !ok {
		t.Fatalf("preview object %q missing", key)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("stored preview is not a PNG: %v", err)
	}
	return img
}

func TestGeneratePreviewTile(t *testing.T) {
	ctx, h := newPreviewHarness(t)
	m := seedMaterial(t, ctx, h.harness, "Safety Steps")

	url, err := h.previews.GeneratePreview(ctx, m.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if url == "" {
		t.Fatal("empty preview url")
	}

	reloaded, err := h.materials.GetByID(ctx, m.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload material: %v", err)
	}
	if reloaded.PreviewURL != url {
		t.Fatalf("preview url = %q, want %q", reloaded.PreviewURL, url)
	}

	keys, err := h.bucket.ListKeys(ctx, gcs.BucketCategoryPreview, previewPrefix(m.ID))
	if err != nil || len(keys) != 1 {
		t.Fatalf("stored keys = %v err = %v", keys, err)
	}
	img := decodeStoredPreview(t, h, keys[0])
	if b := img.Bounds(); b.Dx() != previewTileSize || b.Dy() != previewTileSize {
		t.Fatalf("tile size = %dx%d", b.Dx(), b.Dy())
	}

	if _, err := h.previews.GeneratePreview(ctx, 999999); !faults.IsCode(err, faults.CodeNotFound) {
		t.Fatalf("missing material: got %v", err)
	}
}

func TestGeneratePreviewReplacesOld(t *testing.T) {
	ctx, h := newPreviewHarness(t)
	m := seedMaterial(t, ctx, h.harness, "Safety Steps")

	if _, err := h.previews.GeneratePreview(ctx, m.ID); err != nil {
		t.Fatalf("first generate: %v", err)
	}
	url, err := h.previews.GeneratePreview(ctx, m.ID)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}

	keys, err := h.bucket.ListKeys(ctx, gcs.BucketCategoryPreview, previewPrefix(m.ID))
	if err != nil || len(keys) != 1 {
		t.Fatalf("old preview should be gone: keys=%v err=%v", keys, err)
	}
	if !strings.HasSuffix(url, keys[0]) {
		t.Fatalf("url %q does not point at stored key %q", url, keys[0])
	}
}

func TestSetPreviewFromImage(t *testing.T) {
	ctx, h := newPreviewHarness(t)
	m := seedMaterial(t, ctx, h.harness, "Machine Photo")

	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode source: %v", err)
	}

	url, err := h.previews.SetPreviewFromImage(ctx, m.ID, buf.Bytes())
	if err != nil {
		t.Fatalf("set from image: %v", err)
	}
	if url == "" {
		t.Fatal("empty preview url")
	}

	keys, err := h.bucket.ListKeys(ctx, gcs.BucketCategoryPreview, previewPrefix(m.ID))
	if err != nil || len(keys) != 1 {
		t.Fatalf("stored keys = %v err = %v", keys, err)
	}
	img := decodeStoredPreview(t, h, keys[0])
	if b := img.Bounds(); b.Dx() != previewTileSize || b.Dy() != previewTileSize {
		t.Fatalf("tile size = %dx%d", b.Dx(), b.Dy())
	}

	if _, err := h.previews.SetPreviewFromImage(ctx, m.ID, []byte("not an image")); !faults.IsCode(err, faults.CodeValidation) {
		t.Fatalf("garbage image: got %v", err)
	}
	if _, err := h.previews.SetPreviewFromImage(ctx, m.ID, nil); !faults.IsCode(err, faults.CodeValidation) {
		t.Fatalf("empty image: got %v", err)
	}
}

func TestRemovePreview(t *testing.T) {
	ctx, h := newPreviewHarness(t)
	m := seedMaterial(t, ctx, h.harness, "Safety Steps")

	if _, err := h.previews.GeneratePreview(ctx, m.ID); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := h.previews.RemovePreview(ctx, m.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	reloaded, err := h.materials.GetByID(ctx, m.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload material: %v", err)
	}
	if reloaded.PreviewURL != "" {
		t.Fatalf("preview url should be cleared, got %q", reloaded.PreviewURL)
	}
	keys, err := h.bucket.ListKeys(ctx, gcs.BucketCategoryPreview, previewPrefix(m.ID))
	if err != nil || len(keys) != 0 {
		t.Fatalf("objects should be gone: keys=%v err=%v", keys, err)
	}

	if err := h.previews.RemovePreview(ctx, 999999); !faults.IsCode(err, faults.CodeNotFound) {
		t.Fatalf("missing material: got %v", err)
	}
}
