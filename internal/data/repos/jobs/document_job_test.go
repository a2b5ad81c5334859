package jobs

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/trainforge/trainforge-backend/internal/data/repos/testutil"
	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/platform/dbctx"
)

func TestDocumentJobRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewDocumentJobRepo(db, testutil.Logger(t))

	j1 := &types.DocumentJob{
		TenantID:      "t1",
		Provider:      "chatbot",
		ProviderJobID: "cb-1",
		AssetID:       11,
		Status:        types.DocumentJobStatusSubmitted,
		Payload:       datatypes.JSON([]byte(`{"file":"a.pdf"}`)),
	}
	j2 := &types.DocumentJob{
		TenantID:      "t1",
		Provider:      "siemens",
		ProviderJobID: "si-1",
		AssetID:       12,
		Status:        types.DocumentJobStatusProcessing,
	}
	j3 := &types.DocumentJob{
		TenantID:      "t1",
		Provider:      "chatbot",
		ProviderJobID: "cb-2",
		AssetID:       11,
		Status:        types.DocumentJobStatusCompleted,
	}
	for _, j := range []*types.DocumentJob{j1, j2, j3} {
		if _, err := repo.Create(dbc, j); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if got, err := repo.GetByID(dbc, j1.ID); err != nil || got == nil || got.ProviderJobID != "cb-1" {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByProviderJobID(dbc, "siemens", "si-1"); err != nil || got == nil || got.ID != j2.ID {
		t.Fatalf("GetByProviderJobID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByProviderJobID(dbc, "chatbot", "si-1"); err != nil || got != nil {
		t.Fatalf("GetByProviderJobID wrong provider: got=%v err=%v", got, err)
	}
	if rows, err := repo.ListByAssetID(dbc, 11); err != nil || len(rows) != 2 {
		t.Fatalf("ListByAssetID: err=%v len=%d", err, len(rows))
	}

	// Terminal jobs never surface; never-polled jobs come first.
	polled := time.Now().Add(-time.Minute)
	if err := repo.MarkPolled(dbc, j1.ID, polled); err != nil {
		t.Fatalf("MarkPolled: %v", err)
	}
	open, err := repo.ListOpen(dbc, 10)
	if err != nil || len(open) != 2 {
		t.Fatalf("ListOpen: err=%v len=%d", err, len(open))
	}
	if open[0].ID != j2.ID || open[1].ID != j1.ID {
		t.Fatalf("ListOpen order: got %d,%d want %d,%d", open[0].ID, open[1].ID, j2.ID, j1.ID)
	}
	if open[1].Attempts != 1 {
		t.Fatalf("MarkPolled attempts: got %d want 1", open[1].Attempts)
	}

	if err := repo.UpdateFields(dbc, j2.ID, map[string]interface{}{
		"status": types.DocumentJobStatusFailed,
		"error":  "provider timeout",
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if open, err := repo.ListOpen(dbc, 10); err != nil || len(open) != 1 || open[0].ID != j1.ID {
		t.Fatalf("ListOpen after fail: err=%v len=%d", err, len(open))
	}

	j1.Status = types.DocumentJobStatusCompleted
	j1.Result = datatypes.JSON([]byte(`{"pages":3}`))
	if err := repo.Update(dbc, j1); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, _ := repo.GetByID(dbc, j1.ID); got == nil || !got.Terminal() {
		t.Fatalf("job not terminal after update: %v", got)
	}

	if err := repo.FullDeleteByIDs(dbc, []uint{j1.ID, j2.ID, j3.ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}
	if rows, err := repo.ListByAssetID(dbc, 11); err != nil || len(rows) != 0 {
		t.Fatalf("rows survive full delete: err=%v len=%d", err, len(rows))
	}
}
