package materials

// DefaultHierarchyDepth bounds buildHierarchy when the caller gives no limit.
const DefaultHierarchyDepth = 5

// HierarchyNode wraps one material inside a derived tree snapshot. Depth is
// relative to the root (the root's direct children sit at depth 1).
type HierarchyNode struct {
	Material         *Material        `json:"material"`
	RelationshipType string           `json:"relationship_type"`
	DisplayOrder     *int             `json:"display_order,omitempty"`
	Depth            int              `json:"depth"`
	Children         []*HierarchyNode `json:"children"`
}

// Hierarchy is the depth-bounded tree computed from Material→Material edges.
// It is never persisted; TotalMaterials counts the root plus every node in
// the truncated tree.
type Hierarchy struct {
	Root           *Material        `json:"root"`
	Children       []*HierarchyNode `json:"children"`
	TotalDepth     int              `json:"total_depth"`
	TotalMaterials int              `json:"total_materials"`
}
