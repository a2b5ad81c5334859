package training

import (
	"context"
	"testing"

	"github.com/trainforge/trainforge-backend/internal/data/repos/testutil"
	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
)

func TestLearningPathRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLearningPathRepo(db, testutil.Logger(t))

	p1 := &types.LearningPath{TenantID: "t1", Name: "Onboarding"}
	p2 := &types.LearningPath{TenantID: "t1", Name: "Advanced"}
	p3 := &types.LearningPath{TenantID: "t2", Name: "Other"}
	if _, err := repo.Create(dbc, []*types.LearningPath{p1, p2, p3}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got, err := repo.GetByID(dbc, p1.ID); err != nil || got == nil || got.Name != "Onboarding" {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if rows, err := repo.GetByIDs(dbc, []uint{p1.ID, p2.ID}); err != nil || len(rows) != 2 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.ListByTenant(dbc, "t1"); err != nil || len(rows) != 2 {
		t.Fatalf("ListByTenant: err=%v len=%d", err, len(rows))
	}
	if ok, err := repo.Exists(dbc, p1.ID); err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.Exists(dbc, 999999); err != nil || ok {
		t.Fatalf("Exists missing: ok=%v err=%v", ok, err)
	}

	p1.Description = "first-week ramp"
	if err := repo.Update(dbc, p1); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := repo.UpdateFields(dbc, p2.ID, map[string]interface{}{"name": "Advanced II"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if got, _ := repo.GetByID(dbc, p2.ID); got == nil || got.Name != "Advanced II" {
		t.Fatalf("UpdateFields not persisted: %v", got)
	}

	if err := repo.SoftDeleteByIDs(dbc, []uint{p2.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	if ok, err := repo.Exists(dbc, p2.ID); err != nil || ok {
		t.Fatalf("soft-deleted path still exists: ok=%v err=%v", ok, err)
	}
	if err := repo.FullDeleteByIDs(dbc, []uint{p1.ID, p2.ID, p3.ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}
}
