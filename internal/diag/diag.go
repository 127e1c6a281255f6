package diag

// Diagnostic records a per-entity failure that was isolated instead of
// aborting the batch. Modules accumulate these alongside their primary
// report; they are data, not errors.
type Diagnostic struct {
	Module   string `json:"module"`
	EntityID string `json:"entity_id"`
	Reason   string `json:"reason"`
}

// List is a diagnostics accumulator shared by the analytics modules.
type List []Diagnostic

// Add appends one diagnostic entry.
func (l *List) Add(module, entityID, reason string) {
	*l = append(*l, Diagnostic{Module: module, EntityID: entityID, Reason: reason})
}
