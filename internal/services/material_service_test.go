package services

import (
	"testing"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/domain/faults"
)

func TestMaterialServiceQuizLifecycle(t *testing.T) {
	ctx, h := newHarness(t)

	quiz := &types.Material{
		TenantID: "t1",
		Name:     "Safety quiz",
		QuizQuestions: []*types.QuizQuestion{
			{
				Text:  "Q1",
				Index: 1,
				Answers: []*types.QuizAnswer{
					{Text: "right", Correct: true, Index: 1},
					{Text: "wrong", Index: 2},
				},
			},
			{
				Text:  "Q2",
				Index: 2,
				Answers: []*types.QuizAnswer{
					{Text: "wrong", Index: 1},
					{Text: "right", Correct: true, Index: 2},
				},
			},
		},
	}
	created, err := h.materials.CreateWithChildren(ctx, quiz)
	if err != nil {
		t.Fatalf("CreateWithChildren: %v", err)
	}
	if created.Type != types.MaterialTypeQuiz {
		t.Fatalf("derived type: want=%s got=%s", types.MaterialTypeQuiz, created.Type)
	}

	full, err := h.materials.GetComplete(ctx, created.ID)
	if err != nil || full == nil {
		t.Fatalf("GetComplete: got=%v err=%v", full, err)
	}
	if len(full.QuizQuestions) != 2 {
		t.Fatalf("questions: want=2 got=%d", len(full.QuizQuestions))
	}
	if full.QuizQuestions[0].Text != "Q1" || full.QuizQuestions[1].Text != "Q2" {
		t.Fatalf("question order: got %q,%q", full.QuizQuestions[0].Text, full.QuizQuestions[1].Text)
	}
	for _, q := range full.QuizQuestions {
		if len(q.Answers) != 2 {
			t.Fatalf("answers for %q: want=2 got=%d", q.Text, len(q.Answers))
		}
	}
	if full.QuizQuestions[1].Answers[1].Text != "right" || !full.QuizQuestions[1].Answers[1].Correct {
		t.Fatalf("answer grouping: got %+v", full.QuizQuestions[1].Answers[1])
	}

	// Whole-row replace: the update payload becomes the new child truth.
	full.QuizQuestions = []*types.QuizQuestion{
		{
			Text:    "Q3",
			Index:   1,
			Answers: []*types.QuizAnswer{{Text: "only", Correct: true, Index: 1}},
		},
	}
	if _, err := h.materials.Update(ctx, full); err != nil {
		t.Fatalf("Update: %v", err)
	}
	replaced, err := h.materials.GetComplete(ctx, created.ID)
	if err != nil || replaced == nil {
		t.Fatalf("GetComplete after update: got=%v err=%v", replaced, err)
	}
	if len(replaced.QuizQuestions) != 1 || replaced.QuizQuestions[0].Text != "Q3" {
		t.Fatalf("replace children: got %+v", replaced.QuizQuestions)
	}
	if len(replaced.QuizQuestions[0].Answers) != 1 || replaced.QuizQuestions[0].Answers[0].Text != "only" {
		t.Fatalf("replace answers: got %+v", replaced.QuizQuestions[0].Answers)
	}
}

func TestMaterialServiceUpdateRejectsTypeChange(t *testing.T) {
	ctx, h := newHarness(t)

	quiz, err := h.materials.CreateWithChildren(ctx, &types.Material{
		TenantID: "t1",
		Name:     "Quiz",
		QuizQuestions: []*types.QuizQuestion{
			{Text: "Q", Index: 1, Answers: []*types.QuizAnswer{{Text: "A", Correct: true, Index: 1}}},
		},
	})
	if err != nil {
		t.Fatalf("CreateWithChildren: %v", err)
	}

	quiz.QuizQuestions = nil
	quiz.ChecklistEntries = []*types.ChecklistEntry{{Text: "step", Index: 1}}
	_, err = h.materials.Update(ctx, quiz)
	if !faults.IsCode(err, faults.CodeConflict) {
		t.Fatalf("type change: want conflict, got %v", err)
	}

	// The stored row is untouched.
	kept, err := h.materials.GetComplete(ctx, quiz.ID)
	if err != nil || kept == nil || kept.Type != types.MaterialTypeQuiz || len(kept.QuizQuestions) != 1 {
		t.Fatalf("after rejected update: got=%+v err=%v", kept, err)
	}
}

func TestMaterialServiceAssetHelpers(t *testing.T) {
	ctx, h := newHarness(t)

	doc := seedMaterial(t, ctx, h, "Manual")
	quiz, err := h.materials.CreateWithChildren(ctx, &types.Material{
		TenantID: "t1",
		Name:     "Quiz",
		QuizQuestions: []*types.QuizQuestion{
			{Text: "Q", Index: 1, Answers: []*types.QuizAnswer{{Text: "A", Correct: true, Index: 1}}},
		},
	})
	if err != nil {
		t.Fatalf("CreateWithChildren: %v", err)
	}

	asset := &types.Asset{TenantID: "t1", Filename: "manual.pdf", BucketKey: "t1/manual.pdf"}
	if err := h.tx.WithContext(ctx).Create(asset).Error; err != nil {
		t.Fatalf("seed asset: %v", err)
	}

	if ok, err := h.materials.AssignAsset(ctx, doc.ID, asset.ID); err != nil || !ok {
		t.Fatalf("AssignAsset: ok=%v err=%v", ok, err)
	}
	got, err := h.materials.GetAssetID(ctx, doc.ID)
	if err != nil || got == nil || *got != asset.ID {
		t.Fatalf("GetAssetID: got=%v err=%v", got, err)
	}

	// Variants without an asset slot are a no-op, not an error.
	if ok, err := h.materials.AssignAsset(ctx, quiz.ID, asset.ID); err != nil || ok {
		t.Fatalf("AssignAsset on quiz: ok=%v err=%v", ok, err)
	}
	if _, err := h.materials.AssignAsset(ctx, doc.ID, asset.ID+999); !faults.IsCode(err, faults.CodeNotFound) {
		t.Fatalf("AssignAsset missing asset: want not_found, got %v", err)
	}

	if ok, err := h.materials.RemoveAsset(ctx, doc.ID); err != nil || !ok {
		t.Fatalf("RemoveAsset: ok=%v err=%v", ok, err)
	}
	if got, err := h.materials.GetAssetID(ctx, doc.ID); err != nil || got != nil {
		t.Fatalf("GetAssetID after remove: got=%v err=%v", got, err)
	}

	if rows, err := h.materials.ListByAsset(ctx, asset.ID); err != nil || len(rows) != 0 {
		t.Fatalf("ListByAsset after remove: err=%v len=%d", err, len(rows))
	}
}

func TestMaterialServiceDeleteCascadesEdges(t *testing.T) {
	ctx, h := newHarness(t)

	parent := seedMaterial(t, ctx, h, "Parent")
	child := seedMaterial(t, ctx, h, "Child")
	other := seedMaterial(t, ctx, h, "Other")

	if _, err := h.hierarchy.AssignChild(ctx, parent.ID, child.ID, "", nil); err != nil {
		t.Fatalf("AssignChild: %v", err)
	}
	if _, err := h.hierarchy.AssignChild(ctx, other.ID, parent.ID, "", nil); err != nil {
		t.Fatalf("AssignChild into parent: %v", err)
	}

	path, err := h.paths.Create(ctx, &types.LearningPath{TenantID: "t1", Name: "Path"})
	if err != nil {
		t.Fatalf("create path: %v", err)
	}
	if _, err := h.paths.AssignMaterial(ctx, path.ID, parent.ID, nil); err != nil {
		t.Fatalf("AssignMaterial: %v", err)
	}

	checklist, err := h.materials.CreateWithChildren(ctx, &types.Material{
		TenantID:         "t1",
		Name:             "Checklist",
		ChecklistEntries: []*types.ChecklistEntry{{Text: "step", Index: 1}},
	})
	if err != nil {
		t.Fatalf("create checklist: %v", err)
	}
	entryID := checklist.ChecklistEntries[0].ID
	if _, err := h.subcomponents.AssignMaterialToChecklistEntry(ctx, entryID, parent.ID, "", nil); err != nil {
		t.Fatalf("AssignMaterialToChecklistEntry: %v", err)
	}

	if ok, err := h.materials.Delete(ctx, parent.ID); err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}

	if m, err := h.materials.GetByID(ctx, parent.ID); err != nil || m != nil {
		t.Fatalf("material survives delete: got=%v err=%v", m, err)
	}
	if edges, err := h.relationships.ListByMaterial(ctx, parent.ID); err != nil || len(edges) != 0 {
		t.Fatalf("outgoing edges survive delete: err=%v len=%d", err, len(edges))
	}
	if kids, err := h.hierarchy.ListChildren(ctx, other.ID, true, ""); err != nil || len(kids) != 0 {
		t.Fatalf("incoming edge survives delete: err=%v len=%d", err, len(kids))
	}
	if rows, err := h.paths.ListMaterials(ctx, path.ID); err != nil || len(rows) != 0 {
		t.Fatalf("path membership survives delete: err=%v len=%d", err, len(rows))
	}
	if rows, err := h.subcomponents.ListMaterialsByChecklistEntry(ctx, entryID); err != nil || len(rows) != 0 {
		t.Fatalf("subcomponent edge survives delete: err=%v len=%d", err, len(rows))
	}

	// Unrelated materials are untouched.
	if m, err := h.materials.GetByID(ctx, child.ID); err != nil || m == nil {
		t.Fatalf("sibling deleted: got=%v err=%v", m, err)
	}

	// Deleting twice reports false without error.
	if ok, err := h.materials.Delete(ctx, parent.ID); err != nil || ok {
		t.Fatalf("second delete: ok=%v err=%v", ok, err)
	}
}
