package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"cloud.google.com/go/storage"

	"github.com/trainforge/trainforge-backend/internal/data/aggregates"
	"github.com/trainforge/trainforge-backend/internal/data/repos"
	"github.com/trainforge/trainforge-backend/internal/data/repos/testutil"
	"github.com/trainforge/trainforge-backend/internal/domain/faults"
	"github.com/trainforge/trainforge-backend/internal/platform/ctxutil"
	"github.com/trainforge/trainforge-backend/internal/platform/gcs"
)

// fakeBucket keeps objects in a map, standing in for object storage.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}}
}

func bucketObjectKey(category gcs.BucketCategory, key string) string {
	return string(category) + "/" + key
}

func (b *fakeBucket) Upload(_ context.Context, category gcs.BucketCategory, key string, r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[bucketObjectKey(category, key)] = raw
	return nil
}

func (b *fakeBucket) Download(_ context.Context, category gcs.BucketCategory, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	raw, ok := b.objects[bucketObjectKey(category, key)]
	if !ok {
		return nil, fmt.Errorf("object %q not found", key)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (b *fakeBucket) Delete(_ context.Context, category gcs.BucketCategory, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, bucketObjectKey(category, key))
	return nil
}

func (b *fakeBucket) Replace(ctx context.Context, category gcs.BucketCategory, key string, r io.Reader) error {
	if err := b.Delete(ctx, category, key); err != nil {
		return err
	}
	return b.Upload(ctx, category, key, r)
}

func (b *fakeBucket) ListKeys(_ context.Context, category gcs.BucketCategory, prefix string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	full := bucketObjectKey(category, prefix)
	var out []string
	for k := range b.objects {
		if strings.HasPrefix(k, full) {
			out = append(out, strings.TrimPrefix(k, string(category)+"/"))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (b *fakeBucket) DeletePrefix(_ context.Context, category gcs.BucketCategory, prefix string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	full := bucketObjectKey(category, prefix)
	for k := range b.objects {
		if strings.HasPrefix(k, full) {
			delete(b.objects, k)
		}
	}
	return nil
}

func (b *fakeBucket) Attrs(_ context.Context, category gcs.BucketCategory, key string) (*gcs.ObjectAttrs, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	raw, ok := b.objects[bucketObjectKey(category, key)]
	if !ok {
		// Same sentinel as the real client, so gcs.IsNotExist holds.
		return nil, fmt.Errorf("object %q: %w", key, storage.ErrObjectNotExist)
	}
	return &gcs.ObjectAttrs{Size: int64(len(raw))}, nil
}

func (b *fakeBucket) PublicURL(category gcs.BucketCategory, key string) string {
	return "https://cdn.test/" + string(category) + "/" + key
}

func (b *fakeBucket) object(category gcs.BucketCategory, key string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	raw, ok := b.objects[bucketObjectKey(category, key)]
	return raw, ok
}

type assetHarness struct {
	*harness

	bucket *fakeBucket
	assets AssetService
}

func newAssetHarness(t *testing.T) (context.Context, *assetHarness) {
	t.Helper()
	_, h := newHarness(t)
	log := testutil.Logger(t)
	runner := aggregates.NewGormTxRunner(h.tx)

	bucket := newFakeBucket()
	assets := NewAssetService(h.tx, log, runner,
		repos.NewAssetRepo(h.tx, log), repos.NewMaterialRepo(h.tx, log), bucket)

	ctx := ctxutil.WithTenantData(context.Background(), &ctxutil.TenantData{TenantID: "t1"})
	return ctx, &assetHarness{harness: h, bucket: bucket, assets: assets}
}

func TestAssetUploadAndLookup(t *testing.T) {
	ctx, h := newAssetHarness(t)

	row, err := h.assets.Upload(ctx, "manual.pdf", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(row.BucketKey, "asset/t1/") || !strings.HasSuffix(row.BucketKey, "/manual.pdf") {
		t.Fatalf("bucket key = %q", row.BucketKey)
	}
	if row.TenantID != "t1" || row.ContentType != "application/pdf" || row.SizeBytes != 5 {
		t.Fatalf("row = %+v", row)
	}
	if row.URL != h.bucket.PublicURL(gcs.BucketCategoryAsset, row.BucketKey) {
		t.Fatalf("url = %q", row.URL)
	}
	if _, ok := h.bucket.object(gcs.BucketCategoryAsset, row.BucketKey); !ok {
		t.Fatal("object missing from bucket")
	}

	info, err := h.assets.GetAsset(ctx, row.ID)
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if info.ID != row.ID || info.Filename != "manual.pdf" || info.URL != row.URL || info.AiAvailable || info.JobID != "" {
		t.Fatalf("info = %+v", info)
	}

	if info, err := h.assets.GetAsset(ctx, 999999); err != nil || info != nil {
		t.Fatalf("missing asset lookup: info=%+v err=%v", info, err)
	}

	rc, got, err := h.assets.Download(ctx, row.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	raw, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(raw) != "hello" || got.ID != row.ID {
		t.Fatalf("download content = %q asset = %d", raw, got.ID)
	}

	if _, _, err := h.assets.Download(ctx, 999999); !faults.IsCode(err, faults.CodeNotFound) {
		t.Fatalf("missing download: got %v", err)
	}
}

func TestAssetUploadValidation(t *testing.T) {
	ctx, h := newAssetHarness(t)

	if _, err := h.assets.Upload(ctx, "   ", strings.NewReader("x")); !faults.IsCode(err, faults.CodeValidation) {
		t.Fatalf("empty filename: got %v", err)
	}
	if _, err := h.assets.Upload(ctx, "a.pdf", nil); !faults.IsCode(err, faults.CodeValidation) {
		t.Fatalf("nil reader: got %v", err)
	}
}

func TestAssetDeleteDetachesMaterials(t *testing.T) {
	ctx, h := newAssetHarness(t)

	row, err := h.assets.Upload(ctx, "manual.pdf", strings.NewReader("content"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	m := seedMaterial(t, ctx, h.harness, "Safety Manual")
	if ok, err := h.materials.AssignAsset(ctx, m.ID, row.ID); err != nil || !ok {
		t.Fatalf("assign asset: ok=%v err=%v", ok, err)
	}

	ok, err := h.assets.Delete(ctx, row.ID)
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}

	if got, err := h.assets.GetByID(ctx, row.ID); err != nil || got != nil {
		t.Fatalf("asset row should be gone: got=%+v err=%v", got, err)
	}
	reloaded, err := h.materials.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("reload material: %v", err)
	}
	if reloaded.AssetID != nil {
		t.Fatalf("material still references asset %d", *reloaded.AssetID)
	}
	if _, ok := h.bucket.object(gcs.BucketCategoryAsset, row.BucketKey); ok {
		t.Fatal("object should be deleted from bucket")
	}

	// Absent rows are a no-op, not an error.
	if ok, err := h.assets.Delete(ctx, row.ID); err != nil || ok {
		t.Fatalf("second delete: ok=%v err=%v", ok, err)
	}
}

func TestAssetReplaceContent(t *testing.T) {
	ctx, h := newAssetHarness(t)

	row, err := h.assets.Upload(ctx, "manual.pdf", strings.NewReader("v1"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := h.assets.MarkAiAvailable(ctx, row.ID, true); err != nil {
		t.Fatalf("mark: %v", err)
	}

	updated, err := h.assets.ReplaceContent(ctx, row.ID, "manual-v2.pdf", strings.NewReader("version two"))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if updated.BucketKey != row.BucketKey || updated.URL != row.URL {
		t.Fatalf("key or url changed: %+v", updated)
	}
	if updated.Filename != "manual-v2.pdf" || updated.SizeBytes != int64(len("version two")) {
		t.Fatalf("row after replace = %+v", updated)
	}
	if updated.AiAvailable || updated.JobID != "" {
		t.Fatalf("ai flags should reset: %+v", updated)
	}
	raw, ok := h.bucket.object(gcs.BucketCategoryAsset, row.BucketKey)
	if !ok || string(raw) != "version two" {
		t.Fatalf("bucket content = %q ok=%v", raw, ok)
	}

	if _, err := h.assets.ReplaceContent(ctx, 999999, "x.pdf", strings.NewReader("x")); !faults.IsCode(err, faults.CodeNotFound) {
		t.Fatalf("missing asset: got %v", err)
	}
	if _, err := h.assets.ReplaceContent(ctx, row.ID, "x.pdf", nil); !faults.IsCode(err, faults.CodeValidation) {
		t.Fatalf("nil reader: got %v", err)
	}
}

func TestAssetStat(t *testing.T) {
	ctx, h := newAssetHarness(t)

	row, err := h.assets.Upload(ctx, "manual.pdf", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	stat, err := h.assets.Stat(ctx, row.ID)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if stat.Asset.ID != row.ID || stat.ObjectMissing || stat.Object == nil {
		t.Fatalf("stat = %+v", stat)
	}
	if stat.Object.SizeBytes != 5 {
		t.Fatalf("object size = %d", stat.Object.SizeBytes)
	}

	// A row outliving its object is reported, not failed.
	if err := h.bucket.Delete(ctx, gcs.BucketCategoryAsset, row.BucketKey); err != nil {
		t.Fatalf("bucket delete: %v", err)
	}
	stat, err = h.assets.Stat(ctx, row.ID)
	if err != nil {
		t.Fatalf("stat after object delete: %v", err)
	}
	if !stat.ObjectMissing || stat.Object != nil {
		t.Fatalf("stat = %+v", stat)
	}

	if stat, err := h.assets.Stat(ctx, 999999); err != nil || stat != nil {
		t.Fatalf("missing row: stat=%+v err=%v", stat, err)
	}
}

func TestAssetMarkAiAvailable(t *testing.T) {
	ctx, h := newAssetHarness(t)

	row, err := h.assets.Upload(ctx, "manual.pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := h.assets.MarkAiAvailable(ctx, row.ID, true); err != nil {
		t.Fatalf("mark: %v", err)
	}
	got, err := h.assets.GetByID(ctx, row.ID)
	if err != nil || got == nil || !got.AiAvailable {
		t.Fatalf("after mark: got=%+v err=%v", got, err)
	}

	if err := h.assets.MarkAiAvailable(ctx, 999999, true); !faults.IsCode(err, faults.CodeNotFound) {
		t.Fatalf("missing asset: got %v", err)
	}
}
