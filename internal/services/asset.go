package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trainforge/trainforge-backend/internal/data/aggregates"
	"github.com/trainforge/trainforge-backend/internal/data/repos"
	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/domain/faults"
	"github.com/trainforge/trainforge-backend/internal/platform/ctxutil"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/gcs"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

// AssetInfo is the lookup shape handed to material asset helpers and
// API consumers.
type AssetInfo struct {
	ID          uint   `json:"id"`
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	AiAvailable bool   `json:"ai_available"`
	JobID       string `json:"job_id,omitempty"`
}

// ObjectStat is the subset of bucket object metadata exposed through the API.
type ObjectStat struct {
	SizeBytes   int64     `json:"size_bytes"`
	ContentType string    `json:"content_type,omitempty"`
	Updated     time.Time `json:"updated"`
	ETag        string    `json:"etag,omitempty"`
}

// AssetStat pairs the asset row with the live bucket object so drift between
// the two is visible from the API.
type AssetStat struct {
	Asset         AssetInfo   `json:"asset"`
	Object        *ObjectStat `json:"object,omitempty"`
	ObjectMissing bool        `json:"object_missing"`
}

// AssetService owns uploaded files: bucket objects plus their asset rows.
type AssetService interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*types.Asset, error)

	GetByID(ctx context.Context, id uint) (*types.Asset, error)
	GetAsset(ctx context.Context, id uint) (*AssetInfo, error)
	Stat(ctx context.Context, id uint) (*AssetStat, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*types.Asset, error)

	Download(ctx context.Context, id uint) (io.ReadCloser, *types.Asset, error)
	ReplaceContent(ctx context.Context, id uint, filename string, r io.Reader) (*types.Asset, error)
	Delete(ctx context.Context, id uint) (bool, error)

	MarkAiAvailable(ctx context.Context, id uint, available bool) error
}

type assetService struct {
	db  *gorm.DB
	log *logger.Logger
	tx  aggregates.TxRunner

	assetRepo    repos.AssetRepo
	materialRepo repos.MaterialRepo
	bucket       gcs.BucketService
}

func NewAssetService(
	db *gorm.DB,
	baseLog *logger.Logger,
	tx aggregates.TxRunner,
	assetRepo repos.AssetRepo,
	materialRepo repos.MaterialRepo,
	bucket gcs.BucketService,
) AssetService {
	serviceLog := baseLog.With("service", "AssetService")
	return &assetService{
		db:           db,
		log:          serviceLog,
		tx:           tx,
		assetRepo:    assetRepo,
		materialRepo: materialRepo,
		bucket:       bucket,
	}
}

// =====================================
// Upload
// =====================================

// countingReader tracks how many bytes the bucket consumed, so the asset row
// can record the object size without a second round trip.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (s *assetService) Upload(ctx context.Context, filename string, r io.Reader) (*types.Asset, error) {
	const op = "assets.upload"
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, faults.New(faults.CodeValidation, op, "filename is required", nil)
	}
	if r == nil {
		return nil, faults.New(faults.CodeValidation, op, "file content is required", nil)
	}

	tenantID := ctxutil.TenantID(ctx)
	tenantSegment := tenantID
	if tenantSegment == "" {
		tenantSegment = "shared"
	}
	key := fmt.Sprintf("asset/%s/%s/%s", tenantSegment, uuid.NewString(), filename)

	s.log.Info("Upload asset", "filename", filename, "key", key)

	counter := &countingReader{r: r}
	if err := s.bucket.Upload(ctx, gcs.BucketCategoryAsset, key, counter); err != nil {
		s.log.Error("Upload asset failed", "key", key, "error", err)
		return nil, faults.Wrap(faults.CodeInternal, op, err)
	}

	now := time.Now().UTC()
	row := &types.Asset{
		TenantID:    tenantID,
		Filename:    filename,
		BucketKey:   key,
		URL:         s.bucket.PublicURL(gcs.BucketCategoryAsset, key),
		ContentType: gcs.ContentTypeForFilename(filename),
		SizeBytes:   counter.n,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.assetRepo.Create(dbctx.New(ctx), []*types.Asset{row}); err != nil {
		s.log.Error("Persist asset row failed", "key", key, "error", err)
		// The object is already in the bucket; clean it up so a retried
		// upload does not leave orphans behind.
		if delErr := s.bucket.Delete(ctx, gcs.BucketCategoryAsset, key); delErr != nil {
			s.log.Warn("Orphaned asset object cleanup failed (ignored)", "key", key, "error", delErr)
		}
		return nil, aggregates.MapError(op, err)
	}
	return row, nil
}

// =====================================
// Lookups
// =====================================

func (s *assetService) GetByID(ctx context.Context, id uint) (*types.Asset, error) {
	row, err := s.assetRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, aggregates.MapError("assets.get", err)
	}
	return row, nil
}

func (s *assetService) GetAsset(ctx context.Context, id uint) (*AssetInfo, error) {
	row, err := s.GetByID(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	return s.infoFor(row), nil
}

func (s *assetService) infoFor(row *types.Asset) *AssetInfo {
	url := row.URL
	if url == "" && row.BucketKey != "" {
		url = s.bucket.PublicURL(gcs.BucketCategoryAsset, row.BucketKey)
	}
	return &AssetInfo{
		ID:          row.ID,
		Filename:    row.Filename,
		URL:         url,
		AiAvailable: row.AiAvailable,
		JobID:       row.JobID,
	}
}

// Stat reports the stored row next to the live bucket object. A missing
// object is not an error here: rows can outlive their objects after a manual
// bucket sweep, and the endpoint exists to make that visible.
func (s *assetService) Stat(ctx context.Context, id uint) (*AssetStat, error) {
	const op = "assets.stat"
	row, err := s.GetByID(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	stat := &AssetStat{Asset: *s.infoFor(row)}
	if row.BucketKey == "" {
		stat.ObjectMissing = true
		return stat, nil
	}

	attrs, err := s.bucket.Attrs(ctx, gcs.BucketCategoryAsset, row.BucketKey)
	switch {
	case err == nil:
		stat.Object = &ObjectStat{
			SizeBytes:   attrs.Size,
			ContentType: attrs.ContentType,
			Updated:     attrs.Updated,
			ETag:        attrs.ETag,
		}
	case gcs.IsNotExist(err):
		stat.ObjectMissing = true
	default:
		s.log.Error("Stat asset object failed", "asset_id", id, "key", row.BucketKey, "error", err)
		return nil, faults.Wrap(faults.CodeInternal, op, err)
	}
	return stat, nil
}

func (s *assetService) ListByTenant(ctx context.Context, tenantID string) ([]*types.Asset, error) {
	if strings.TrimSpace(tenantID) == "" {
		tenantID = ctxutil.TenantID(ctx)
	}
	rows, err := s.assetRepo.ListByTenant(dbctx.New(ctx), tenantID)
	if err != nil {
		return nil, aggregates.MapError("assets.list_by_tenant", err)
	}
	return rows, nil
}

// =====================================
// Content
// =====================================

func (s *assetService) Download(ctx context.Context, id uint) (io.ReadCloser, *types.Asset, error) {
	const op = "assets.download"
	row, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if row == nil {
		return nil, nil, faults.Newf(faults.CodeNotFound, op, "asset %d not found", id)
	}
	rc, err := s.bucket.Download(ctx, gcs.BucketCategoryAsset, row.BucketKey)
	if err != nil {
		s.log.Error("Download asset failed", "asset_id", id, "key", row.BucketKey, "error", err)
		return nil, nil, faults.Wrap(faults.CodeInternal, op, err)
	}
	return rc, row, nil
}

// ReplaceContent swaps the stored object for new bytes in place: same key,
// same URL, fresh size. AI availability resets because any derived analysis
// no longer matches the content.
func (s *assetService) ReplaceContent(ctx context.Context, id uint, filename string, r io.Reader) (*types.Asset, error) {
	const op = "assets.replace_content"
	if r == nil {
		return nil, faults.New(faults.CodeValidation, op, "file content is required", nil)
	}
	row, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, faults.Newf(faults.CodeNotFound, op, "asset %d not found", id)
	}
	if row.BucketKey == "" {
		return nil, faults.Newf(faults.CodePreconditionFailed, op, "asset %d has no stored object", id)
	}

	counter := &countingReader{r: r}
	if err := s.bucket.Replace(ctx, gcs.BucketCategoryAsset, row.BucketKey, counter); err != nil {
		s.log.Error("Replace asset object failed", "asset_id", id, "key", row.BucketKey, "error", err)
		return nil, faults.Wrap(faults.CodeInternal, op, err)
	}

	fields := map[string]interface{}{
		"size_bytes":   counter.n,
		"ai_available": false,
		"job_id":       "",
	}
	filename = strings.TrimSpace(filename)
	if filename != "" && filename != row.Filename {
		fields["filename"] = filename
		if ct := gcs.ContentTypeForFilename(filename); ct != "" {
			fields["content_type"] = ct
		}
	}
	if err := s.assetRepo.UpdateFields(dbctx.New(ctx), id, fields); err != nil {
		return nil, aggregates.MapError(op, err)
	}

	s.log.Info("Asset content replaced", "asset_id", id, "key", row.BucketKey, "size_bytes", counter.n)
	return s.GetByID(ctx, id)
}

// =====================================
// Delete
// =====================================

// Delete removes the asset row and detaches every material that pointed at
// it, then drops the bucket object best-effort. Materials survive with a
// cleared asset reference.
func (s *assetService) Delete(ctx context.Context, id uint) (bool, error) {
	const op = "assets.delete"
	var bucketKey string
	deleted := false

	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		row, err := s.assetRepo.GetByID(dbc, id)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		if row == nil {
			return nil
		}
		bucketKey = row.BucketKey

		referencing, err := s.materialRepo.ListByAssetID(dbc, id)
		if err != nil {
			return aggregates.MapError(op, err)
		}
		for _, m := range referencing {
			if err := s.materialRepo.UpdateFields(dbc, m.ID, map[string]interface{}{"asset_id": nil}); err != nil {
				return aggregates.MapError(op, err)
			}
		}

		if err := s.assetRepo.FullDeleteByIDs(dbc, []uint{id}); err != nil {
			return aggregates.MapError(op, err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		s.log.Error("Delete asset failed", "asset_id", id, "error", err)
		return false, err
	}
	if !deleted {
		return false, nil
	}

	s.log.Info("Asset deleted", "asset_id", id)
	if bucketKey != "" {
		if err := s.bucket.Delete(ctx, gcs.BucketCategoryAsset, bucketKey); err != nil {
			s.log.Warn("Delete asset object failed (ignored)", "key", bucketKey, "error", err)
		}
	}
	return true, nil
}

// =====================================
// AI availability
// =====================================

func (s *assetService) MarkAiAvailable(ctx context.Context, id uint, available bool) error {
	const op = "assets.mark_ai_available"
	row, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if row == nil {
		return faults.Newf(faults.CodeNotFound, op, "asset %d not found", id)
	}
	if err := s.assetRepo.UpdateFields(dbctx.New(ctx), id, map[string]interface{}{"ai_available": available}); err != nil {
		return aggregates.MapError(op, err)
	}
	return nil
}
