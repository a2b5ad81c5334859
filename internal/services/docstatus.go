package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/trainforge/trainforge-backend/internal/clients/docai"
	"github.com/trainforge/trainforge-backend/internal/clients/redis"
	"github.com/trainforge/trainforge-backend/internal/data/aggregates"
	"github.com/trainforge/trainforge-backend/internal/data/repos"
	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/envutil"
	"github.com/trainforge/trainforge-backend/internal/platform/logger"
)

// DocStatusPoller walks the open document jobs on a timer, asks each job's
// provider where it stands, and applies the answer. It is the only writer
// that flips Asset.AiAvailable on.
type DocStatusPoller interface {
	Start(ctx context.Context)
	PollOnce(ctx context.Context) (int, error)
}

type docStatusPoller struct {
	db  *gorm.DB
	log *logger.Logger
	tx  aggregates.TxRunner

	jobRepo   repos.DocumentJobRepo
	assetRepo repos.AssetRepo
	registry  *docai.Registry
	bus       redis.StatusBus

	interval    time.Duration
	batchSize   int
	concurrency int
}

func NewDocStatusPoller(
	db *gorm.DB,
	baseLog *logger.Logger,
	tx aggregates.TxRunner,
	jobRepo repos.DocumentJobRepo,
	assetRepo repos.AssetRepo,
	registry *docai.Registry,
	bus redis.StatusBus,
) DocStatusPoller {
	serviceLog := baseLog.With("service", "DocStatusPoller")
	return &docStatusPoller{
		db:          db,
		log:         serviceLog,
		tx:          tx,
		jobRepo:     jobRepo,
		assetRepo:   assetRepo,
		registry:    registry,
		bus:         bus,
		interval:    envutil.Seconds("DOC_STATUS_POLL_SECONDS", 15),
		batchSize:   envutil.Int("DOC_STATUS_POLL_BATCH", 50),
		concurrency: envutil.Int("DOC_STATUS_POLL_CONCURRENCY", 4),
	}
}

// Start runs the poll loop until ctx is cancelled.
func (p *docStatusPoller) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.log.Info("Document status poller started",
			"interval", p.interval.String(),
			"batch", p.batchSize,
			"concurrency", p.concurrency,
		)
		for {
			select {
			case <-ctx.Done():
				p.log.Info("Document status poller stopped")
				return
			case <-ticker.C:
				p.tick(ctx)
			}
		}
	}()
}

// tick shields the loop: a panic in one pass must not kill the poller.
func (p *docStatusPoller) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("Document status poll panic recovered", "panic", fmt.Sprintf("%v", r))
		}
	}()

	updated, err := p.PollOnce(ctx)
	if err != nil {
		p.log.Error("Document status poll failed", "error", err)
		return
	}
	if updated > 0 {
		p.log.Info("Document status poll applied updates", "updated", updated)
	}
}

// PollOnce claims one batch of open jobs and polls their providers
// concurrently. Per-job failures are logged and skipped; the batch keeps
// going. Returns how many jobs changed state.
func (p *docStatusPoller) PollOnce(ctx context.Context) (int, error) {
	jobs, err := p.jobRepo.ListOpen(dbctx.New(ctx), p.batchSize)
	if err != nil {
		return 0, aggregates.MapError("documents.poll", err)
	}
	if len(jobs) == 0 {
		return 0, nil
	}

	var updated int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, job := range jobs {
		g.Go(func() error {
			changed, err := p.pollJob(gctx, job)
			if err != nil {
				p.log.Warn("Poll job failed", "job_id", job.ID, "provider", job.Provider, "error", err)
				return nil
			}
			if changed {
				atomic.AddInt64(&updated, 1)
			}
			return nil
		})
	}
	_ = g.Wait()

	return int(atomic.LoadInt64(&updated)), nil
}

func (p *docStatusPoller) pollJob(ctx context.Context, job *types.DocumentJob) (bool, error) {
	// Stamp the attempt before the provider call so a hung provider still
	// pushes the job to the back of the queue.
	if err := p.jobRepo.MarkPolled(dbctx.New(ctx), job.ID, time.Now().UTC()); err != nil {
		return false, aggregates.MapError("documents.poll", err)
	}

	client, err := p.registry.ByProvider(job.Provider)
	if err != nil {
		return false, err
	}
	st, err := client.GetJobStatus(ctx, job.ProviderJobID)
	if err != nil {
		return false, err
	}

	changed := false
	err = p.tx.InTx(ctx, func(dbc dbctx.Context) error {
		ch, applyErr := applyDocumentStatus(dbc, p.jobRepo, p.assetRepo, job, st)
		changed = ch
		return applyErr
	})
	if err != nil {
		return false, err
	}
	if changed {
		publishJobStatus(ctx, p.log, p.bus, job)
	}
	return changed, nil
}
