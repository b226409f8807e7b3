package store

// TombstonePrefix marks a flag key as a deletion request: writing
// "-=<id>" drops the record at <id> entirely instead of merging into it.
// The syntax is reserved; ordinary record ids never start with "-=".
const TombstonePrefix = "-="

// mergeValue merges src into dst following the flag-store write protocol:
// plain objects merge field by field, recursively; arrays and scalars
// replace wholesale. Callers who want an array shrunk must therefore send
// the full intended array.
func mergeValue(dst, src any) any {
	dm, dok := dst.(map[string]any)
	sm, sok := src.(map[string]any)
	if !dok || !sok {
		return src
	}
	for k, sv := range sm {
		if dv, ok := dm[k]; ok {
			dm[k] = mergeValue(dv, sv)
		} else {
			dm[k] = sv
		}
	}
	return dm
}
