package training

import (
	"context"
	"testing"

	"github.com/trainforge/trainforge-backend/internal/data/repos/testutil"
	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
)

func TestTrainingProgramRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewTrainingProgramRepo(db, testutil.Logger(t))

	p1 := &types.TrainingProgram{TenantID: "t1", Name: "Warehouse", Active: true}
	p2 := &types.TrainingProgram{TenantID: "t1", Name: "Retired", Active: false}
	if _, err := repo.Create(dbc, []*types.TrainingProgram{p1, p2}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got, err := repo.GetByID(dbc, p1.ID); err != nil || got == nil || got.Name != "Warehouse" {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if rows, err := repo.ListByTenant(dbc, "t1"); err != nil || len(rows) != 2 {
		t.Fatalf("ListByTenant: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.ListActiveByTenant(dbc, "t1"); err != nil || len(rows) != 1 || rows[0].ID != p1.ID {
		t.Fatalf("ListActiveByTenant: err=%v len=%d", err, len(rows))
	}
	if ok, err := repo.Exists(dbc, p1.ID); err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}

	if err := repo.UpdateFields(dbc, p2.ID, map[string]interface{}{"active": true}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if rows, err := repo.ListActiveByTenant(dbc, "t1"); err != nil || len(rows) != 2 {
		t.Fatalf("ListActiveByTenant after activate: err=%v len=%d", err, len(rows))
	}

	if err := repo.SoftDeleteByIDs(dbc, []uint{p1.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	if got, err := repo.GetByID(dbc, p1.ID); err != nil || got != nil {
		t.Fatalf("soft-deleted program visible: got=%v err=%v", got, err)
	}
	if err := repo.FullDeleteByIDs(dbc, []uint{p1.ID, p2.ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}
}
