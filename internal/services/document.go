package services

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/trainforge/trainforge-backend/internal/clients/docai"
	"github.com/trainforge/trainforge-backend/internal/clients/redis"
	"github.com/trainforge/trainforge-backend/internal/data/aggregates"
	"github.com/trainforge/trainforge-backend/internal/data/repos"
	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/domain/faults"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/httpx"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

// DocumentService submits assets to their document-AI provider and tracks
// the resulting jobs. The provider is picked from the routing config by the
// material type the asset backs.
type DocumentService interface {
	SubmitForMaterial(ctx context.Context, materialID uint) (*types.DocumentJob, error)
	SubmitAsset(ctx context.Context, assetID uint, materialID uint) (*types.DocumentJob, error)

	GetJob(ctx context.Context, id uint) (*types.DocumentJob, error)
	ListJobsByAsset(ctx context.Context, assetID uint) ([]*types.DocumentJob, error)

	// RefreshJob polls the provider once and applies the reported state.
	RefreshJob(ctx context.Context, id uint) (*types.DocumentJob, error)
}

type documentService struct {
	db  *gorm.DB
	log *logger.Logger
	tx  aggregates.TxRunner

	jobRepo      repos.DocumentJobRepo
	assetRepo    repos.AssetRepo
	materialRepo repos.MaterialRepo
	registry     *docai.Registry
	bus          redis.StatusBus
}

func NewDocumentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	tx aggregates.TxRunner,
	jobRepo repos.DocumentJobRepo,
	assetRepo repos.AssetRepo,
	materialRepo repos.MaterialRepo,
	registry *docai.Registry,
	bus redis.StatusBus,
) DocumentService {
	serviceLog := baseLog.With("service", "DocumentService")
	return &documentService{
		db:           db,
		log:          serviceLog,
		tx:           tx,
		jobRepo:      jobRepo,
		assetRepo:    assetRepo,
		materialRepo: materialRepo,
		registry:     registry,
		bus:          bus,
	}
}

// =====================================
// Submission
// =====================================

func (s *documentService) SubmitForMaterial(ctx context.Context, materialID uint) (*types.DocumentJob, error) {
	const op = "documents.submit_for_material"
	m, err := s.materialRepo.GetByID(dbctx.New(ctx), materialID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if m == nil {
		return nil, faults.Newf(faults.CodeNotFound, op, "material %d not found", materialID)
	}
	if m.AssetID == nil || *m.AssetID == 0 {
		return nil, faults.Newf(faults.CodePreconditionFailed, op, "material %d has no asset to process", materialID)
	}
	return s.submit(ctx, op, *m.AssetID, m.ID, m.Type)
}

func (s *documentService) SubmitAsset(ctx context.Context, assetID uint, materialID uint) (*types.DocumentJob, error) {
	const op = "documents.submit_asset"
	materialType := types.MaterialType("")
	if materialID != 0 {
		m, err := s.materialRepo.GetByID(dbctx.New(ctx), materialID)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		if m == nil {
			return nil, faults.Newf(faults.CodeNotFound, op, "material %d not found", materialID)
		}
		materialType = m.Type
	}
	return s.submit(ctx, op, assetID, materialID, materialType)
}

func (s *documentService) submit(ctx context.Context, op string, assetID, materialID uint, materialType types.MaterialType) (*types.DocumentJob, error) {
	asset, err := s.assetRepo.GetByID(dbctx.New(ctx), assetID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if asset == nil {
		return nil, faults.Newf(faults.CodeNotFound, op, "asset %d not found", assetID)
	}
	if strings.TrimSpace(asset.URL) == "" {
		return nil, faults.Newf(faults.CodePreconditionFailed, op, "asset %d has no public URL", assetID)
	}

	client, err := s.registry.ForMaterialType(string(materialType))
	if err != nil {
		return nil, faults.Wrap(faults.CodeInternal, op, err)
	}

	filetype := filetypeOf(asset.Filename)
	s.log.Info("Submit document",
		"provider", client.Provider(),
		"asset_id", asset.ID,
		"material_id", materialID,
		"filetype", filetype,
	)

	providerJobID, err := client.SubmitDocument(ctx, asset.ID, asset.URL, filetype)
	if err != nil {
		s.log.Error("Submit document failed", "provider", client.Provider(), "asset_id", asset.ID, "error", err)
		return nil, faults.Wrap(submitFailureCode(err), op, err)
	}

	payload, _ := json.Marshal(map[string]string{"url": asset.URL, "filetype": filetype})
	now := time.Now().UTC()
	job := &types.DocumentJob{
		TenantID:      asset.TenantID,
		Provider:      client.Provider(),
		ProviderJobID: providerJobID,
		AssetID:       asset.ID,
		MaterialID:    materialID,
		Status:        types.DocumentJobStatusSubmitted,
		Payload:       datatypes.JSON(payload),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		if _, err := s.jobRepo.Create(dbc, job); err != nil {
			return aggregates.MapError(op, err)
		}
		// The asset always points at its most recent job.
		return aggregates.MapError(op, s.assetRepo.UpdateFields(dbc, asset.ID, map[string]interface{}{
			"job_id":       providerJobID,
			"ai_available": false,
		}))
	})
	if err != nil {
		s.log.Error("Persist document job failed", "provider", job.Provider, "provider_job_id", providerJobID, "error", err)
		return nil, err
	}

	publishJobStatus(ctx, s.log, s.bus, job)
	return job, nil
}

// submitFailureCode keeps transient provider trouble distinguishable from
// hard rejections.
func submitFailureCode(err error) faults.Code {
	if httpx.IsRetryableError(err) {
		return faults.CodeRetryable
	}
	return faults.CodeInternal
}

func filetypeOf(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(strings.TrimSpace(filename))), ".")
}

// =====================================
// Lookups
// =====================================

func (s *documentService) GetJob(ctx context.Context, id uint) (*types.DocumentJob, error) {
	row, err := s.jobRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, aggregates.MapError("documents.get_job", err)
	}
	return row, nil
}

func (s *documentService) ListJobsByAsset(ctx context.Context, assetID uint) ([]*types.DocumentJob, error) {
	rows, err := s.jobRepo.ListByAssetID(dbctx.New(ctx), assetID)
	if err != nil {
		return nil, aggregates.MapError("documents.list_jobs_by_asset", err)
	}
	return rows, nil
}

// =====================================
// Status refresh
// =====================================

func (s *documentService) RefreshJob(ctx context.Context, id uint) (*types.DocumentJob, error) {
	const op = "documents.refresh_job"
	job, err := s.jobRepo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if job == nil {
		return nil, faults.Newf(faults.CodeNotFound, op, "document job %d not found", id)
	}
	if job.Terminal() {
		return job, nil
	}

	client, err := s.registry.ByProvider(job.Provider)
	if err != nil {
		return nil, faults.Wrap(faults.CodeInternal, op, err)
	}
	st, err := client.GetJobStatus(ctx, job.ProviderJobID)
	if err != nil {
		return nil, faults.Wrap(submitFailureCode(err), op, err)
	}

	changed := false
	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		ch, applyErr := applyDocumentStatus(dbc, s.jobRepo, s.assetRepo, job, st)
		changed = ch
		return applyErr
	})
	if err != nil {
		return nil, err
	}
	if changed {
		publishJobStatus(ctx, s.log, s.bus, job)
	}
	return job, nil
}

// applyDocumentStatus reconciles one provider report into the job row and,
// on completion, the asset's AI availability. It mutates job in place and
// reports whether anything changed.
func applyDocumentStatus(dbc dbctx.Context, jobRepo repos.DocumentJobRepo, assetRepo repos.AssetRepo, job *types.DocumentJob, st *docai.JobStatus) (bool, error) {
	const op = "documents.apply_status"
	if job == nil || st == nil {
		return false, nil
	}

	next := job.Status
	errMsg := job.Error
	switch st.Status {
	case docai.StatusCompleted:
		next = types.DocumentJobStatusCompleted
		errMsg = ""
	case docai.StatusFailed:
		next = types.DocumentJobStatusFailed
		errMsg = st.Error
	default:
		if job.Status == types.DocumentJobStatusSubmitted {
			next = types.DocumentJobStatusProcessing
		}
	}
	if next == job.Status && errMsg == job.Error {
		return false, nil
	}

	if err := jobRepo.UpdateFields(dbc, job.ID, map[string]interface{}{
		"status": next,
		"error":  errMsg,
	}); err != nil {
		return false, aggregates.MapError(op, err)
	}
	if next == types.DocumentJobStatusCompleted {
		if err := assetRepo.UpdateFields(dbc, job.AssetID, map[string]interface{}{"ai_available": true}); err != nil {
			return false, aggregates.MapError(op, err)
		}
	}

	job.Status = next
	job.Error = errMsg
	return true, nil
}

func publishJobStatus(ctx context.Context, log *logger.Logger, bus redis.StatusBus, job *types.DocumentJob) {
	if bus == nil || job == nil {
		return
	}
	ev := redis.StatusEvent{
		Kind:       redis.EventKindDocumentJob,
		TenantID:   job.TenantID,
		JobID:      job.ID,
		Provider:   job.Provider,
		AssetID:    job.AssetID,
		MaterialID: job.MaterialID,
		Status:     job.Status,
		Error:      job.Error,
		At:         time.Now().UTC(),
	}
	if err := bus.Publish(ctx, ev); err != nil {
		log.Warn("Publish job status failed (ignored)", "job_id", job.ID, "error", err)
	}
}
