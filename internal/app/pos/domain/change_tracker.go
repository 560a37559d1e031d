package domain

// ChangeTracker records which fields of a loaded aggregate were modified so
// repositories can emit update mutations for those columns only.
type ChangeTracker struct {
	dirty map[string]bool
}

func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{dirty: make(map[string]bool)}
}

func (ct *ChangeTracker) MarkDirty(fields ...string) {
	for _, f := range fields {
		ct.dirty[f] = true
	}
}

func (ct *ChangeTracker) Dirty(field string) bool {
	return ct.dirty[field]
}

func (ct *ChangeTracker) HasChanges() bool {
	return len(ct.dirty) > 0
}

// Clear forgets all changes, e.g. after a repository built its mutation for
// a transaction attempt that will be retried.
func (ct *ChangeTracker) Clear() {
	ct.dirty = make(map[string]bool)
}
