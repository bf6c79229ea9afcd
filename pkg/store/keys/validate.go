package keys

import (
	"fmt"
	"strings"
)

// ValidateID rejects ids that would break key segmentation. ":" is the
// segment separator, so an id containing it could alias another parent's
// range.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("empty id")
	}
	if strings.Contains(id, ":") {
		return fmt.Errorf("id %q contains reserved separator ':'", id)
	}
	return nil
}
