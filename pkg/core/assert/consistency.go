package assert

import (
	"fmt"
	"strings"

	"github.com/blackcoderx/apicheck/pkg/core/value"
)

// AllStatus checks that every batch response has the expected status.
func AllStatus(statuses []int, expected int) error {
	if len(statuses) == 0 {
		return fail("batch status", "", "at least one response", "none")
	}
	for i, s := range statuses {
		if s != expected {
			return fail("batch status", fmt.Sprintf("response %d", i+1), expected, s)
		}
	}
	return nil
}

// ConsistentStructure checks that every body has the same sorted set of
// top-level keys as the first one.
func ConsistentStructure(bodies []value.Value) error {
	if len(bodies) == 0 {
		return fail("batch structure", "", "at least one response", "none")
	}
	first := strings.Join(bodies[0].Keys(), ",")
	for i := 1; i < len(bodies); i++ {
		keys := strings.Join(bodies[i].Keys(), ",")
		if keys != first {
			return fail("batch structure", fmt.Sprintf("response %d", i+1), "keys ["+first+"]", "keys ["+keys+"]")
		}
	}
	return nil
}
