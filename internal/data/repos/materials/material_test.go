package materials

import (
	"context"
	"testing"

	"github.com/trainforge/trainforge-backend/internal/data/repos/testutil"
	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/pointers"
)

func TestMaterialRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewMaterialRepo(db, testutil.Logger(t))

	m1 := &types.Material{TenantID: "t1", Name: "Forklift intro", Type: types.MaterialTypeVideo, UniqueID: "mat-vid-1", AssetID: pointers.Uint(101)}
	m2 := &types.Material{TenantID: "t1", Name: "Safety checklist", Type: types.MaterialTypeChecklist, UniqueID: "mat-chk-1"}
	m3 := &types.Material{TenantID: "t2", Name: "Other tenant", Type: types.MaterialTypeDefault}
	if _, err := repo.Create(dbc, []*types.Material{m1, m2, m3}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m1.ID == 0 || m2.ID == 0 {
		t.Fatalf("Create did not backfill ids: %d %d", m1.ID, m2.ID)
	}

	if got, err := repo.GetByID(dbc, m1.ID); err != nil || got == nil || got.Name != "Forklift intro" {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByID(dbc, 0); err != nil || got != nil {
		t.Fatalf("GetByID zero id: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByID(dbc, 999999); err != nil || got != nil {
		t.Fatalf("GetByID missing: got=%v err=%v", got, err)
	}
	if rows, err := repo.GetByIDs(dbc, []uint{m1.ID, m2.ID}); err != nil || len(rows) != 2 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if got, err := repo.GetByUniqueID(dbc, "mat-chk-1"); err != nil || got == nil || got.ID != m2.ID {
		t.Fatalf("GetByUniqueID: got=%v err=%v", got, err)
	}
	if rows, err := repo.ListByTenant(dbc, "t1"); err != nil || len(rows) != 2 {
		t.Fatalf("ListByTenant: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.ListByType(dbc, types.MaterialTypeChecklist); err != nil || len(rows) != 1 {
		t.Fatalf("ListByType: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.ListByAssetID(dbc, 101); err != nil || len(rows) != 1 || rows[0].ID != m1.ID {
		t.Fatalf("ListByAssetID: err=%v len=%d", err, len(rows))
	}

	m1.Description = "updated"
	if err := repo.Update(dbc, m1); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, _ := repo.GetByID(dbc, m1.ID); got == nil || got.Description != "updated" {
		t.Fatalf("Update not persisted: %v", got)
	}
	if err := repo.UpdateFields(dbc, m2.ID, map[string]interface{}{"preview_url": "https://cdn/previews/2.png"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if got, _ := repo.GetByID(dbc, m2.ID); got == nil || got.PreviewURL != "https://cdn/previews/2.png" {
		t.Fatalf("UpdateFields not persisted: %v", got)
	}

	if err := repo.SoftDeleteByIDs(dbc, []uint{m2.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	if got, err := repo.GetByID(dbc, m2.ID); err != nil || got != nil {
		t.Fatalf("soft-deleted row still visible: got=%v err=%v", got, err)
	}
	if rows, err := repo.ListByTenant(dbc, "t1"); err != nil || len(rows) != 1 {
		t.Fatalf("ListByTenant after soft delete: err=%v len=%d", err, len(rows))
	}

	if err := repo.FullDeleteByIDs(dbc, []uint{m1.ID, m2.ID, m3.ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}
	if rows, err := repo.GetByIDs(dbc, []uint{m1.ID, m2.ID, m3.ID}); err != nil || len(rows) != 0 {
		t.Fatalf("rows survive full delete: err=%v len=%d", err, len(rows))
	}
}
