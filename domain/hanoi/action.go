package hanoi

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Action moves the top disk of one peg onto another.
type Action struct {
	Disk int
	From int
	To   int
}

// Key returns the canonical vote key. Two actions share a key only when all
// three fields are equal.
func (a Action) Key() string {
	return fmt.Sprintf("[%d,%d,%d]", a.Disk, a.From, a.To)
}

// String renders the action as [disk, from, to].
func (a Action) String() string {
	var b strings.Builder
	writeInts(&b, []int{a.Disk, a.From, a.To})
	return b.String()
}

// MarshalJSON encodes the action as a three element array.
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{a.Disk, a.From, a.To})
}

// UnmarshalJSON decodes a three element array.
func (a *Action) UnmarshalJSON(b []byte) error {
	var raw []int
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("action must have 3 elements, got %d", len(raw))
	}
	a.Disk, a.From, a.To = raw[0], raw[1], raw[2]
	return nil
}

// Apply pops the top disk of the source peg and pushes the action's disk onto
// the destination peg of a copy of c. It performs no legality checks.
func Apply(c Configuration, a Action) Configuration {
	next := c.Clone()
	if n := len(next[a.From]); n > 0 {
		next[a.From] = next[a.From][:n-1]
	}
	next[a.To] = append(next[a.To], a.Disk)
	return next
}

// Plan is the ordered sequence of accepted actions.
type Plan []Action

// OptimalLength returns the minimal number of moves for diskCount disks.
func OptimalLength(diskCount int) int {
	if diskCount <= 0 {
		return 0
	}
	return 1<<diskCount - 1
}
