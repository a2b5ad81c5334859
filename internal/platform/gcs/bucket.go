package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

// BucketCategory routes an object to its bucket: raw uploaded assets or
// generated preview images.
type BucketCategory string

const (
	BucketCategoryAsset   BucketCategory = "asset"
	BucketCategoryPreview BucketCategory = "preview"
)

type bucketConfig struct {
	name      string
	cdnDomain string
}

type ObjectAttrs struct {
	Size        int64
	ContentType string
	Updated     time.Time
	ETag        string
}

type BucketService interface {
	Upload(ctx context.Context, category BucketCategory, key string, r io.Reader) error
	Download(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, category BucketCategory, key string) error
	Replace(ctx context.Context, category BucketCategory, key string, r io.Reader) error
	ListKeys(ctx context.Context, category BucketCategory, prefix string) ([]string, error)
	DeletePrefix(ctx context.Context, category BucketCategory, prefix string) error
	Attrs(ctx context.Context, category BucketCategory, key string) (*ObjectAttrs, error)
	PublicURL(category BucketCategory, key string) string
}

type bucketService struct {
	log           *logger.Logger
	client        *storage.Client
	mode          StorageMode
	emulatorHost  string
	assetBucket   bucketConfig
	previewBucket bucketConfig
	publicBaseURL string
}

func NewBucketService(log *logger.Logger) (BucketService, error) {
	cfg, err := ResolveStorageConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("resolve object storage config: %w", err)
	}
	return NewBucketServiceWithConfig(log, cfg)
}

func NewBucketServiceWithConfig(log *logger.Logger, cfg StorageConfig) (BucketService, error) {
	if err := ValidateStorageConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	serviceLog := log.With("service", "BucketService")

	assetBucketName := strings.TrimSpace(os.Getenv("ASSET_GCS_BUCKET_NAME"))
	if assetBucketName == "" {
		return nil, fmt.Errorf("missing env var ASSET_GCS_BUCKET_NAME")
	}
	previewBucketName := strings.TrimSpace(os.Getenv("PREVIEW_GCS_BUCKET_NAME"))
	if previewBucketName == "" {
		previewBucketName = assetBucketName
	}

	publicBaseURL, err := resolvePublicBaseURL(cfg)
	if err != nil {
		return nil, err
	}

	client, err := newStorageClient(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	serviceLog.Info("Object storage initialized",
		"mode", cfg.Mode,
		"mode_implied", cfg.ModeImplied,
		"emulator_host", cfg.EmulatorHost,
		"public_base_url", publicBaseURL,
		"asset_bucket", assetBucketName,
		"preview_bucket", previewBucketName,
	)

	return &bucketService{
		log:          serviceLog,
		client:       client,
		mode:         cfg.Mode,
		emulatorHost: strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"),
		assetBucket: bucketConfig{
			name:      assetBucketName,
			cdnDomain: strings.TrimSpace(os.Getenv("ASSET_CDN_DOMAIN")),
		},
		previewBucket: bucketConfig{
			name:      previewBucketName,
			cdnDomain: strings.TrimSpace(os.Getenv("PREVIEW_CDN_DOMAIN")),
		},
		publicBaseURL: publicBaseURL,
	}, nil
}

func newStorageClient(ctx context.Context, cfg StorageConfig) (*storage.Client, error) {
	switch cfg.Mode {
	case StorageModeGCS:
		opts := ClientOptionsFromEnv()
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case StorageModeEmulator:
		endpoint := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &StorageConfigError{Field: "mode", Value: string(cfg.Mode)}
	}
}

func resolvePublicBaseURL(cfg StorageConfig) (string, error) {
	raw := strings.TrimSpace(os.Getenv("OBJECT_STORAGE_PUBLIC_BASE_URL"))
	if raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil || strings.TrimSpace(parsed.Scheme) == "" || strings.TrimSpace(parsed.Host) == "" {
			return "", fmt.Errorf("invalid OBJECT_STORAGE_PUBLIC_BASE_URL=%q; expected absolute URL like http://localhost:4443", raw)
		}
		return strings.TrimRight(raw, "/"), nil
	}
	if cfg.IsEmulator() {
		return strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"), nil
	}
	return "", nil
}

func (bs *bucketService) config(category BucketCategory) (bucketConfig, error) {
	switch category {
	case BucketCategoryAsset:
		return bs.assetBucket, nil
	case BucketCategoryPreview:
		return bs.previewBucket, nil
	default:
		return bucketConfig{}, fmt.Errorf("unknown bucket category: %s", category)
	}
}

func (bs *bucketService) Upload(ctx context.Context, category BucketCategory, key string, r io.Reader) error {
	cfg, err := bs.config(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := bs.client.Bucket(cfg.name).Object(key).NewWriter(ctx)
	if ct := ContentTypeForFilename(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close object writer %q: %w", key, err)
	}
	return nil
}

func (bs *bucketService) Delete(ctx context.Context, category BucketCategory, key string) error {
	cfg, err := bs.config(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := bs.client.Bucket(cfg.name).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("delete object %q in bucket %q: %w", key, cfg.name, err)
	}
	return nil
}

func (bs *bucketService) Replace(ctx context.Context, category BucketCategory, key string, r io.Reader) error {
	if err := bs.Delete(ctx, category, key); err != nil {
		return fmt.Errorf("delete old object: %w", err)
	}
	if err := bs.Upload(ctx, category, key, r); err != nil {
		return fmt.Errorf("upload new object: %w", err)
	}
	return nil
}

func (bs *bucketService) ListKeys(ctx context.Context, category BucketCategory, prefix string) ([]string, error) {
	cfg, err := bs.config(category)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var keys []string
	it := bs.client.Bucket(cfg.name).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return keys, nil
		}
		if err != nil {
			return nil, fmt.Errorf("list objects under %q: %w", prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
}

// DeletePrefix removes every object under prefix. Individual failures are
// logged and skipped so one stuck object does not strand the rest.
func (bs *bucketService) DeletePrefix(ctx context.Context, category BucketCategory, prefix string) error {
	keys, err := bs.ListKeys(ctx, category, prefix)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := bs.Delete(ctx, category, k); err != nil {
			bs.log.Warn("Prefix sweep delete failed", "key", k, "error", err)
		}
	}
	return nil
}

func (bs *bucketService) PublicURL(category BucketCategory, key string) string {
	cfg, err := bs.config(category)
	if err != nil {
		return key
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if cfg.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", cfg.cdnDomain, key)
	}
	if bs.mode == StorageModeEmulator {
		if u := bs.emulatorMediaURL(cfg.name, key, bs.publicBaseURL); u != "" {
			return u
		}
	}
	if bs.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", bs.publicBaseURL, cfg.name, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.name, key)
}

func (bs *bucketService) isEmulator() bool {
	return bs != nil && bs.mode == StorageModeEmulator && strings.TrimSpace(bs.emulatorHost) != ""
}

func (bs *bucketService) emulatorMediaURL(bucket, key, base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = bs.emulatorHost
	}
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", base, url.PathEscape(bucket), url.PathEscape(key))
}

func (bs *bucketService) emulatorMetaURL(bucket, key string) string {
	return fmt.Sprintf("%s/storage/v1/b/%s/o/%s", bs.emulatorHost, url.PathEscape(bucket), url.PathEscape(key))
}

// emulatorGet issues a request against the fake-gcs-server REST surface and
// normalizes 404 to storage.ErrObjectNotExist so callers branch the same way
// they would against real GCS.
func (bs *bucketService) emulatorGet(ctx context.Context, urlStr string, okStatuses ...int) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("create emulator request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("emulator request: %w", err)
	}
	for _, code := range okStatuses {
		if resp.StatusCode == code {
			return resp, nil
		}
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	_ = resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("emulator object lookup: %w", storage.ErrObjectNotExist)
	}
	return nil, fmt.Errorf("emulator request failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
}

// readCloserWithCancel ties the download context to the reader: cancelling
// before the caller reads would hand back an empty stream, so the context is
// released on Close instead.
type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	if r.cancel != nil {
		r.cancel()
	}
	return err
}

func (bs *bucketService) Download(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error) {
	cfg, err := bs.config(category)
	if err != nil {
		return nil, err
	}
	ctx2, cancel := context.WithTimeout(ctx, 2*time.Minute)

	if bs.isEmulator() {
		resp, err := bs.emulatorGet(ctx2, bs.emulatorMediaURL(cfg.name, key, ""), http.StatusOK, http.StatusPartialContent)
		if err != nil {
			cancel()
			return nil, err
		}
		return &readCloserWithCancel{ReadCloser: resp.Body, cancel: cancel}, nil
	}

	r, err := bs.client.Bucket(cfg.name).Object(key).NewReader(ctx2)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open object reader %q: %w", key, err)
	}
	return &readCloserWithCancel{ReadCloser: r, cancel: cancel}, nil
}

// emulatorObjectMeta mirrors the object resource fake-gcs-server returns;
// numeric fields arrive as strings.
type emulatorObjectMeta struct {
	Size        string `json:"size"`
	ContentType string `json:"contentType"`
	Updated     string `json:"updated"`
	ETag        string `json:"etag"`
}

func (m emulatorObjectMeta) attrs() *ObjectAttrs {
	size, _ := strconv.ParseInt(strings.TrimSpace(m.Size), 10, 64)
	var updated time.Time
	if ts := strings.TrimSpace(m.Updated); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			updated = parsed
		}
	}
	return &ObjectAttrs{Size: size, ContentType: m.ContentType, Updated: updated, ETag: m.ETag}
}

func (bs *bucketService) Attrs(ctx context.Context, category BucketCategory, key string) (*ObjectAttrs, error) {
	cfg, err := bs.config(category)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if bs.isEmulator() {
		resp, err := bs.emulatorGet(ctx, bs.emulatorMetaURL(cfg.name, key), http.StatusOK)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var meta emulatorObjectMeta
		if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
			return nil, fmt.Errorf("decode emulator attrs: %w", err)
		}
		return meta.attrs(), nil
	}

	attrs, err := bs.client.Bucket(cfg.name).Object(key).Attrs(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch object attrs %q: %w", key, err)
	}
	return &ObjectAttrs{
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
		Updated:     attrs.Updated,
		ETag:        attrs.Etag,
	}, nil
}

// IsNotExist reports whether err means the object is absent rather than the
// lookup failing.
func IsNotExist(err error) bool {
	return errors.Is(err, storage.ErrObjectNotExist)
}

// ContentTypeForFilename maps well-known extensions; unknown extensions
// return "" and the storage layer sniffs.
func ContentTypeForFilename(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return ""
	}
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	case strings.HasSuffix(s, ".svg"):
		return "image/svg+xml"
	case strings.HasSuffix(s, ".mp4"), strings.HasSuffix(s, ".m4v"):
		return "video/mp4"
	case strings.HasSuffix(s, ".webm"):
		return "video/webm"
	case strings.HasSuffix(s, ".mov"):
		return "video/quicktime"
	case strings.HasSuffix(s, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(s, ".txt"):
		return "text/plain"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	case strings.HasSuffix(s, ".zip"):
		return "application/zip"
	default:
		return ""
	}
}
