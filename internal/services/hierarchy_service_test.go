package services

import (
	"testing"

	types "github.com/trainforge/trainforge-backend/internal/domain"
	"github.com/trainforge/trainforge-backend/internal/domain/faults"
)

func TestHierarchyServiceCycleRejection(t *testing.T) {
	ctx, h := newHarness(t)

	a := seedMaterial(t, ctx, h, "A")
	b := seedMaterial(t, ctx, h, "B")
	c := seedMaterial(t, ctx, h, "C")

	if _, err := h.hierarchy.AssignChild(ctx, a.ID, b.ID, "", nil); err != nil {
		t.Fatalf("A->B: %v", err)
	}
	if _, err := h.hierarchy.AssignChild(ctx, b.ID, c.ID, "", nil); err != nil {
		t.Fatalf("B->C: %v", err)
	}

	// Closing the loop C->A must fail before anything is written.
	if cycle, err := h.hierarchy.WouldCreateCircularReference(ctx, c.ID, a.ID); err != nil || !cycle {
		t.Fatalf("WouldCreateCircularReference: cycle=%v err=%v", cycle, err)
	}
	_, err := h.hierarchy.AssignChild(ctx, c.ID, a.ID, "", nil)
	if !faults.IsCode(err, faults.CodeInvariantViolation) {
		t.Fatalf("C->A: want invariant_violation, got %v", err)
	}
	if edges, err := h.relationships.ListByMaterial(ctx, c.ID); err != nil || len(edges) != 0 {
		t.Fatalf("rejected edge persisted: err=%v len=%d", err, len(edges))
	}

	// Self reference is always a cycle, even with no edges stored.
	if _, err := h.hierarchy.AssignChild(ctx, a.ID, a.ID, "", nil); !faults.IsCode(err, faults.CodeInvariantViolation) {
		t.Fatalf("A->A: want invariant_violation, got %v", err)
	}
	if cycle, err := h.hierarchy.WouldCreateCircularReference(ctx, b.ID, a.ID); err != nil || !cycle {
		t.Fatalf("indirect cycle missed: cycle=%v err=%v", cycle, err)
	}
}

func TestHierarchyServiceDiamondIsNotACycle(t *testing.T) {
	ctx, h := newHarness(t)

	x := seedMaterial(t, ctx, h, "X")
	p := seedMaterial(t, ctx, h, "P")
	q := seedMaterial(t, ctx, h, "Q")
	r := seedMaterial(t, ctx, h, "R")
	top := seedMaterial(t, ctx, h, "Top")

	// X fans out to P and Q, which converge on R. The walk reaches R twice
	// via different paths; that is a diamond, not a loop.
	for _, pair := range [][2]uint{{x.ID, p.ID}, {x.ID, q.ID}, {p.ID, r.ID}, {q.ID, r.ID}} {
		if _, err := h.hierarchy.AssignChild(ctx, pair[0], pair[1], "", nil); err != nil {
			t.Fatalf("assign %d->%d: %v", pair[0], pair[1], err)
		}
	}

	if cycle, err := h.hierarchy.WouldCreateCircularReference(ctx, top.ID, x.ID); err != nil || cycle {
		t.Fatalf("diamond flagged as cycle: cycle=%v err=%v", cycle, err)
	}
	if _, err := h.hierarchy.AssignChild(ctx, top.ID, x.ID, "", nil); err != nil {
		t.Fatalf("Top->X over diamond: %v", err)
	}
	// The true back edge underneath the diamond is still caught.
	if cycle, err := h.hierarchy.WouldCreateCircularReference(ctx, r.ID, top.ID); err != nil || !cycle {
		t.Fatalf("deep cycle missed: cycle=%v err=%v", cycle, err)
	}
}

func TestHierarchyServiceChildOrdering(t *testing.T) {
	ctx, h := newHarness(t)

	parent := seedMaterial(t, ctx, h, "Parent")
	c1 := seedMaterial(t, ctx, h, "Child 1")
	c2 := seedMaterial(t, ctx, h, "Child 2")
	c3 := seedMaterial(t, ctx, h, "Child 3")

	for _, c := range []*types.Material{c1, c2, c3} {
		if _, err := h.hierarchy.AssignChild(ctx, parent.ID, c.ID, "", nil); err != nil {
			t.Fatalf("assign %q: %v", c.Name, err)
		}
	}

	kids, err := h.hierarchy.ListChildren(ctx, parent.ID, true, "")
	if err != nil || len(kids) != 3 {
		t.Fatalf("ListChildren: err=%v len=%d", err, len(kids))
	}
	// Appends without an explicit order land at max+1: 1, 2, 3.
	if kids[0].ID != c1.ID || kids[1].ID != c2.ID || kids[2].ID != c3.ID {
		t.Fatalf("append order: got %d,%d,%d", kids[0].ID, kids[1].ID, kids[2].ID)
	}

	if _, err := h.hierarchy.AssignChild(ctx, parent.ID, c1.ID, "", nil); !faults.IsCode(err, faults.CodeConflict) {
		t.Fatalf("duplicate child: want conflict, got %v", err)
	}

	if ok, err := h.hierarchy.ReorderChildren(ctx, parent.ID, map[uint]int{c1.ID: 3, c3.ID: 1}); err != nil || !ok {
		t.Fatalf("ReorderChildren: ok=%v err=%v", ok, err)
	}
	kids, err = h.hierarchy.ListChildren(ctx, parent.ID, true, "")
	if err != nil || len(kids) != 3 {
		t.Fatalf("ListChildren after reorder: err=%v len=%d", err, len(kids))
	}
	if kids[0].ID != c3.ID || kids[1].ID != c2.ID || kids[2].ID != c1.ID {
		t.Fatalf("reorder: got %d,%d,%d", kids[0].ID, kids[1].ID, kids[2].ID)
	}
	if _, err := h.hierarchy.ReorderChildren(ctx, parent.ID, nil); !faults.IsCode(err, faults.CodeValidation) {
		t.Fatalf("empty reorder: want validation, got %v", err)
	}

	if ok, err := h.hierarchy.RemoveChild(ctx, parent.ID, c2.ID, ""); err != nil || !ok {
		t.Fatalf("RemoveChild: ok=%v err=%v", ok, err)
	}
	if ok, err := h.hierarchy.RemoveChild(ctx, parent.ID, c2.ID, ""); err != nil || ok {
		t.Fatalf("second RemoveChild: ok=%v err=%v", ok, err)
	}

	if parents, err := h.hierarchy.ListParents(ctx, c1.ID, ""); err != nil || len(parents) != 1 || parents[0].ID != parent.ID {
		t.Fatalf("ListParents: err=%v got=%v", err, parents)
	}
}

func TestHierarchyServiceBuildHierarchy(t *testing.T) {
	ctx, h := newHarness(t)

	root := seedMaterial(t, ctx, h, "Root")
	a := seedMaterial(t, ctx, h, "A")
	x := seedMaterial(t, ctx, h, "X")
	b := seedMaterial(t, ctx, h, "B")
	c := seedMaterial(t, ctx, h, "C")

	for _, pair := range [][2]uint{{root.ID, a.ID}, {root.ID, x.ID}, {a.ID, b.ID}, {b.ID, c.ID}} {
		if _, err := h.hierarchy.AssignChild(ctx, pair[0], pair[1], "", nil); err != nil {
			t.Fatalf("assign %d->%d: %v", pair[0], pair[1], err)
		}
	}

	tree, err := h.hierarchy.BuildHierarchy(ctx, root.ID, 2)
	if err != nil || tree == nil {
		t.Fatalf("BuildHierarchy: got=%v err=%v", tree, err)
	}
	if tree.Root == nil || tree.Root.ID != root.ID {
		t.Fatalf("root: got %+v", tree.Root)
	}
	// C sits at depth 3 and is silently truncated.
	if tree.TotalDepth != 2 || tree.TotalMaterials != 4 {
		t.Fatalf("totals: depth=%d materials=%d", tree.TotalDepth, tree.TotalMaterials)
	}
	if len(tree.Children) != 2 || tree.Children[0].Material.ID != a.ID || tree.Children[1].Material.ID != x.ID {
		t.Fatalf("first level: got %+v", tree.Children)
	}
	if tree.Children[0].Depth != 1 {
		t.Fatalf("depth of first level: got %d", tree.Children[0].Depth)
	}
	aNode := tree.Children[0]
	if len(aNode.Children) != 1 || aNode.Children[0].Material.ID != b.ID || aNode.Children[0].Depth != 2 {
		t.Fatalf("second level: got %+v", aNode.Children)
	}
	if len(aNode.Children[0].Children) != 0 {
		t.Fatalf("truncation leaked depth 3: got %+v", aNode.Children[0].Children)
	}

	// Depth zero falls back to the default, which is deep enough here.
	full, err := h.hierarchy.BuildHierarchy(ctx, root.ID, 0)
	if err != nil {
		t.Fatalf("BuildHierarchy default depth: %v", err)
	}
	if full.TotalDepth != 3 || full.TotalMaterials != 5 {
		t.Fatalf("default depth totals: depth=%d materials=%d", full.TotalDepth, full.TotalMaterials)
	}

	if _, err := h.hierarchy.BuildHierarchy(ctx, 999999, 0); !faults.IsCode(err, faults.CodeNotFound) {
		t.Fatalf("missing root: want not_found, got %v", err)
	}
}
