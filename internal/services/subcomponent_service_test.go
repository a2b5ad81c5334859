package services

import (
	"testing"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/domain/faults"
)

func TestSubcomponentServiceChecklistEntryFlow(t *testing.T) {
	ctx, h := newHarness(t)

	checklist, err := h.materials.CreateWithChildren(ctx, &types.Material{
		TenantID: "t1",
		Name:     "Pre-flight checklist",
		ChecklistEntries: []*types.ChecklistEntry{
			{Text: "Check oil", Index: 1},
			{Text: "Check tires", Index: 2},
		},
	})
	if err != nil {
		t.Fatalf("create checklist: %v", err)
	}
	entry := checklist.ChecklistEntries[0]
	doc1 := seedMaterial(t, ctx, h, "Oil manual")
	doc2 := seedMaterial(t, ctx, h, "Oil video")

	if _, err := h.subcomponents.AssignMaterialToChecklistEntry(ctx, entry.ID, doc1.ID, "reference", nil); err != nil {
		t.Fatalf("assign doc1: %v", err)
	}
	if _, err := h.subcomponents.AssignMaterialToChecklistEntry(ctx, entry.ID, doc2.ID, "reference", nil); err != nil {
		t.Fatalf("assign doc2: %v", err)
	}

	rows, err := h.subcomponents.ListMaterialsByChecklistEntry(ctx, entry.ID)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListMaterialsByChecklistEntry: err=%v len=%d", err, len(rows))
	}
	if rows[0].ID != doc1.ID || rows[1].ID != doc2.ID {
		t.Fatalf("append order: got %d,%d", rows[0].ID, rows[1].ID)
	}

	// Duplicates are keyed on the triple; a different relationship type does
	// not make a second link legal.
	if _, err := h.subcomponents.AssignMaterialToChecklistEntry(ctx, entry.ID, doc1.ID, "illustration", nil); !faults.IsCode(err, faults.CodeConflict) {
		t.Fatalf("duplicate triple: want conflict, got %v", err)
	}

	if _, err := h.subcomponents.AssignMaterialToChecklistEntry(ctx, 999999, doc1.ID, "", nil); !faults.IsCode(err, faults.CodeNotFound) {
		t.Fatalf("missing entry: want not_found, got %v", err)
	}
	if _, err := h.subcomponents.AssignMaterialToChecklistEntry(ctx, entry.ID, 999999, "", nil); !faults.IsCode(err, faults.CodeNotFound) {
		t.Fatalf("missing material: want not_found, got %v", err)
	}

	if rows, err := h.subcomponents.ListBySubcomponentMaterial(ctx, doc1.ID); err != nil || len(rows) != 1 || rows[0].SubcomponentID != entry.ID {
		t.Fatalf("ListBySubcomponentMaterial: err=%v got=%v", err, rows)
	}

	if ok, err := h.subcomponents.RemoveMaterialFromChecklistEntry(ctx, entry.ID, doc1.ID); err != nil || !ok {
		t.Fatalf("remove: ok=%v err=%v", ok, err)
	}
	if ok, err := h.subcomponents.RemoveMaterialFromChecklistEntry(ctx, entry.ID, doc1.ID); err != nil || ok {
		t.Fatalf("second remove: ok=%v err=%v", ok, err)
	}
}

func TestSubcomponentServiceRejectsUnknownKind(t *testing.T) {
	ctx, h := newHarness(t)

	doc := seedMaterial(t, ctx, h, "Doc")
	if _, err := h.subcomponents.AssignToSubcomponent(ctx, "Paragraph", 1, doc.ID, "", nil); !faults.IsCode(err, faults.CodeValidation) {
		t.Fatalf("unknown kind assign: want validation, got %v", err)
	}
	if _, err := h.subcomponents.RemoveFromSubcomponent(ctx, "Paragraph", 1, doc.ID); !faults.IsCode(err, faults.CodeValidation) {
		t.Fatalf("unknown kind remove: want validation, got %v", err)
	}
	if _, err := h.subcomponents.ListMaterialsBySubcomponent(ctx, "Paragraph", 1); !faults.IsCode(err, faults.CodeValidation) {
		t.Fatalf("unknown kind list: want validation, got %v", err)
	}
}

func TestSubcomponentServiceKindsAreIndependent(t *testing.T) {
	ctx, h := newHarness(t)

	quiz, err := h.materials.CreateWithChildren(ctx, &types.Material{
		TenantID: "t1",
		Name:     "Quiz",
		QuizQuestions: []*types.QuizQuestion{
			{Text: "Q", Index: 1, Answers: []*types.QuizAnswer{
				{Text: "A", Correct: true, Index: 1},
			}},
		},
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	question := quiz.QuizQuestions[0]
	answer := question.Answers[0]
	doc := seedMaterial(t, ctx, h, "Explainer")

	// Links under different kinds are independent rows even when they point
	// at the same material.
	if _, err := h.subcomponents.AssignMaterialToQuizQuestion(ctx, question.ID, doc.ID, "", nil); err != nil {
		t.Fatalf("assign to question: %v", err)
	}
	if _, err := h.subcomponents.AssignMaterialToQuizAnswer(ctx, answer.ID, doc.ID, "", nil); err != nil {
		t.Fatalf("assign to answer: %v", err)
	}

	if rows, err := h.subcomponents.ListMaterialsByQuizQuestion(ctx, question.ID); err != nil || len(rows) != 1 {
		t.Fatalf("question materials: err=%v len=%d", err, len(rows))
	}
	if rows, err := h.subcomponents.ListMaterialsByQuizAnswer(ctx, answer.ID); err != nil || len(rows) != 1 {
		t.Fatalf("answer materials: err=%v len=%d", err, len(rows))
	}
	if rows, err := h.subcomponents.ListBySubcomponentMaterial(ctx, doc.ID); err != nil || len(rows) != 2 {
		t.Fatalf("edges into doc: err=%v len=%d", err, len(rows))
	}

	if ok, err := h.subcomponents.RemoveMaterialFromQuizAnswer(ctx, answer.ID, doc.ID); err != nil || !ok {
		t.Fatalf("remove from answer: ok=%v err=%v", ok, err)
	}
	if rows, err := h.subcomponents.ListMaterialsByQuizQuestion(ctx, question.ID); err != nil || len(rows) != 1 {
		t.Fatalf("question link removed with answer link: err=%v len=%d", err, len(rows))
	}
}
