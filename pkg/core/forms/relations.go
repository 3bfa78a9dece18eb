package forms

import "fmt"

// ChildOps is the create/update/delete plan that syncs a relation field's
// submitted child rows against the rows the backend already holds.
type ChildOps struct {
	Entity  string                   `json:"entity"`
	Creates []map[string]interface{} `json:"creates,omitempty"`
	Updates []map[string]interface{} `json:"updates,omitempty"`
	Deletes []string                 `json:"deletes,omitempty"` // key values of removed rows
}

// Empty reports whether the plan contains no operations.
func (c ChildOps) Empty() bool {
	return len(c.Creates) == 0 && len(c.Updates) == 0 && len(c.Deletes) == 0
}

// DiffChildren compares submitted child rows to existing ones on the relation
// key field. Submitted rows without a key value are creates; rows whose key
// matches an existing row are updates; existing keys absent from the
// submission are deletes.
func DiffChildren(spec *RelationSpec, existing, submitted []map[string]interface{}) (ChildOps, error) {
	keyField := spec.KeyField
	if keyField == "" {
		keyField = "id"
	}

	ops := ChildOps{Entity: spec.Entity}

	existingByKey := make(map[string]map[string]interface{}, len(existing))
	for _, row := range existing {
		k, ok := stringKey(row[keyField])
		if !ok {
			return ops, fmt.Errorf("existing %s row missing key field %q", spec.Entity, keyField)
		}
		existingByKey[k] = row
	}

	seen := make(map[string]bool, len(submitted))
	for _, row := range submitted {
		k, ok := stringKey(row[keyField])
		if !ok || k == "" {
			ops.Creates = append(ops.Creates, row)
			continue
		}
		if seen[k] {
			return ops, fmt.Errorf("submitted %s rows repeat key %q", spec.Entity, k)
		}
		seen[k] = true
		if _, exists := existingByKey[k]; exists {
			ops.Updates = append(ops.Updates, row)
		} else {
			// A key the backend has never seen: treat as a create that
			// carries its own identifier.
			ops.Creates = append(ops.Creates, row)
		}
	}

	for _, row := range existing {
		k, _ := stringKey(row[keyField])
		if !seen[k] {
			ops.Deletes = append(ops.Deletes, k)
		}
	}

	return ops, nil
}

func stringKey(v interface{}) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
