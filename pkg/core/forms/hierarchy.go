package forms

import "fmt"

// CheckHierarchy verifies that assigning parentID to entityID keeps the
// parent graph acyclic. parents maps each known entity id to its current
// parent ("" or absent for roots). Self-parenting and cycles through the
// existing chain are rejected.
func CheckHierarchy(entityID, parentID string, parents map[string]string) error {
	if parentID == "" {
		return nil
	}
	if parentID == entityID {
		return fmt.Errorf("record %s cannot be its own parent", entityID)
	}

	// Walk up from the proposed parent; reaching entityID means the
	// assignment closes a loop.
	current := parentID
	for i := 0; i <= len(parents); i++ {
		next, ok := parents[current]
		if !ok || next == "" {
			return nil
		}
		if next == entityID {
			return fmt.Errorf("assigning parent %s to %s creates a cycle", parentID, entityID)
		}
		current = next
	}
	return fmt.Errorf("parent chain of %s does not terminate", parentID)
}
