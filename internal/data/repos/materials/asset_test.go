package materials

import (
	"context"
	"testing"

	"github.com/trainforge/trainforge-backend/internal/data/repos/testutil"
	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
)

func TestAssetRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewAssetRepo(db, testutil.Logger(t))

	a1 := &types.Asset{TenantID: "t1", Filename: "intro.mp4", BucketKey: "t1/assets/intro.mp4", ContentType: "video/mp4", SizeBytes: 1024, JobID: "job-1"}
	a2 := &types.Asset{TenantID: "t1", Filename: "manual.pdf", BucketKey: "t1/assets/manual.pdf", ContentType: "application/pdf"}
	if _, err := repo.Create(dbc, []*types.Asset{a1, a2}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got, err := repo.GetByID(dbc, a1.ID); err != nil || got == nil || got.Filename != "intro.mp4" {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByJobID(dbc, "job-1"); err != nil || got == nil || got.ID != a1.ID {
		t.Fatalf("GetByJobID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByJobID(dbc, "nope"); err != nil || got != nil {
		t.Fatalf("GetByJobID miss: got=%v err=%v", got, err)
	}
	if rows, err := repo.ListByTenant(dbc, "t1"); err != nil || len(rows) != 2 {
		t.Fatalf("ListByTenant: err=%v len=%d", err, len(rows))
	}

	if err := repo.UpdateFields(dbc, a1.ID, map[string]interface{}{"ai_available": true}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if got, _ := repo.GetByID(dbc, a1.ID); got == nil || !got.AiAvailable {
		t.Fatalf("ai_available not set: %v", got)
	}

	a2.URL = "https://storage.example.com/manual.pdf"
	if err := repo.Update(dbc, a2); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := repo.SoftDeleteByIDs(dbc, []uint{a2.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	if rows, err := repo.ListByTenant(dbc, "t1"); err != nil || len(rows) != 1 {
		t.Fatalf("ListByTenant after soft delete: err=%v len=%d", err, len(rows))
	}
	if err := repo.FullDeleteByIDs(dbc, []uint{a1.ID, a2.ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}
	if got, err := repo.GetByID(dbc, a1.ID); err != nil || got != nil {
		t.Fatalf("row survives full delete: got=%v err=%v", got, err)
	}
}
