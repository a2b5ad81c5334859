package materials

import (
	"context"
	"testing"

	"github.com/trainforge/trainforge-backend/internal/data/repos/testutil"
	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
	"github.com/trainforge/trainforge-backend/internal/platform/pointers"
)

func TestSubcomponentRelationshipRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewSubcomponentRelationshipRepo(db, testutil.Logger(t))

	owner := &types.Material{TenantID: "t1", Name: "Checklist", Type: types.MaterialTypeChecklist}
	helpA := &types.Material{TenantID: "t1", Name: "Help video A", Type: types.MaterialTypeVideo}
	helpB := &types.Material{TenantID: "t1", Name: "Help video B", Type: types.MaterialTypeVideo}
	for _, m := range []*types.Material{owner, helpA, helpB} {
		if err := tx.WithContext(ctx).Create(m).Error; err != nil {
			t.Fatalf("seed material: %v", err)
		}
	}
	entry := &types.ChecklistEntry{MaterialID: owner.ID, Text: "Check brakes", Index: 0}
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		t.Fatalf("seed entry: %v", err)
	}

	s1 := &types.SubcomponentMaterialRelationship{
		SubcomponentID:    entry.ID,
		SubcomponentType:  types.SubcomponentChecklistEntry,
		RelatedMaterialID: helpA.ID,
		RelationshipType:  "explains",
		DisplayOrder:      pointers.Int(2),
	}
	s2 := &types.SubcomponentMaterialRelationship{
		SubcomponentID:    entry.ID,
		SubcomponentType:  types.SubcomponentChecklistEntry,
		RelatedMaterialID: helpB.ID,
		RelationshipType:  "explains",
		DisplayOrder:      pointers.Int(1),
	}
	for _, s := range []*types.SubcomponentMaterialRelationship{s1, s2} {
		if _, err := repo.Create(dbc, s); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if got, err := repo.GetByID(dbc, s1.ID); err != nil || got == nil || got.ID != s1.ID {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByTuple(dbc, types.SubcomponentChecklistEntry, entry.ID, helpA.ID, "explains"); err != nil || got == nil || got.ID != s1.ID {
		t.Fatalf("GetByTuple: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByTuple(dbc, types.SubcomponentWorkflowStep, entry.ID, helpA.ID, "explains"); err != nil || got != nil {
		t.Fatalf("GetByTuple wrong kind: got=%v err=%v", got, err)
	}

	rows, err := repo.ListBySubcomponent(dbc, types.SubcomponentChecklistEntry, entry.ID)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListBySubcomponent: err=%v len=%d", err, len(rows))
	}
	if rows[0].ID != s2.ID || rows[1].ID != s1.ID {
		t.Fatalf("display order not respected: got %d,%d", rows[0].ID, rows[1].ID)
	}
	if rows, err := repo.ListBySubcomponentAndType(dbc, types.SubcomponentChecklistEntry, entry.ID, "explains"); err != nil || len(rows) != 2 {
		t.Fatalf("ListBySubcomponentAndType: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.ListByRelatedMaterial(dbc, helpA.ID); err != nil || len(rows) != 1 || rows[0].ID != s1.ID {
		t.Fatalf("ListByRelatedMaterial: err=%v len=%d", err, len(rows))
	}

	if max, err := repo.MaxDisplayOrder(dbc, types.SubcomponentChecklistEntry, entry.ID); err != nil || max != 2 {
		t.Fatalf("MaxDisplayOrder: max=%d err=%v", max, err)
	}
	if err := repo.UpdateDisplayOrder(dbc, s1.ID, 1); err != nil {
		t.Fatalf("UpdateDisplayOrder: %v", err)
	}
	if err := repo.UpdateDisplayOrder(dbc, s2.ID, 2); err != nil {
		t.Fatalf("UpdateDisplayOrder: %v", err)
	}
	rows, err = repo.ListBySubcomponent(dbc, types.SubcomponentChecklistEntry, entry.ID)
	if err != nil || len(rows) != 2 || rows[0].ID != s1.ID {
		t.Fatalf("order after swap: err=%v", err)
	}

	if err := repo.FullDeleteByRelatedMaterialID(dbc, helpA.ID); err != nil {
		t.Fatalf("FullDeleteByRelatedMaterialID: %v", err)
	}
	if rows, err := repo.ListBySubcomponent(dbc, types.SubcomponentChecklistEntry, entry.ID); err != nil || len(rows) != 1 {
		t.Fatalf("after FullDeleteByRelatedMaterialID: err=%v len=%d", err, len(rows))
	}
	if err := repo.FullDeleteBySubcomponent(dbc, types.SubcomponentChecklistEntry, entry.ID); err != nil {
		t.Fatalf("FullDeleteBySubcomponent: %v", err)
	}
	if rows, err := repo.ListBySubcomponent(dbc, types.SubcomponentChecklistEntry, entry.ID); err != nil || len(rows) != 0 {
		t.Fatalf("rows survive FullDeleteBySubcomponent: err=%v len=%d", err, len(rows))
	}
}
