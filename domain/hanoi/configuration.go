// Package hanoi provides the domain model for the three-peg disk transfer puzzle:
// configurations, actions, step validation, oracle reply parsing and plan verification.
package hanoi

import (
	"strconv"
	"strings"
)

// PegCount is the number of pegs in the puzzle.
const PegCount = 3

// Configuration is the full state of all pegs. Each peg lists disk ids from
// bottom to top; larger ids are larger disks.
type Configuration [PegCount][]int

// Start returns the canonical start configuration with all disks on peg 0.
func Start(diskCount int) Configuration {
	var c Configuration
	c[0] = descending(diskCount)
	c[1] = []int{}
	c[2] = []int{}
	return c
}

// Goal returns the canonical goal configuration with all disks on peg 2.
func Goal(diskCount int) Configuration {
	var c Configuration
	c[0] = []int{}
	c[1] = []int{}
	c[2] = descending(diskCount)
	return c
}

func descending(n int) []int {
	disks := make([]int, 0, n)
	for d := n; d >= 1; d-- {
		disks = append(disks, d)
	}
	return disks
}

// Clone returns a deep copy of the configuration.
func (c Configuration) Clone() Configuration {
	var out Configuration
	for i, peg := range c {
		out[i] = append(make([]int, 0, len(peg)), peg...)
	}
	return out
}

// Equal reports whether both configurations hold the same disks on every peg
// in the same order.
func (c Configuration) Equal(other Configuration) bool {
	for i := range c {
		if len(c[i]) != len(other[i]) {
			return false
		}
		for j := range c[i] {
			if c[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

// Top returns the disk on top of the given peg.
func (c Configuration) Top(peg int) (int, bool) {
	if peg < 0 || peg >= PegCount || len(c[peg]) == 0 {
		return 0, false
	}
	return c[peg][len(c[peg])-1], true
}

// DiskCount returns the total number of disks across all pegs.
func (c Configuration) DiskCount() int {
	n := 0
	for _, peg := range c {
		n += len(peg)
	}
	return n
}

// String renders the configuration the way prompts present it, e.g. [[3, 2, 1], [], []].
func (c Configuration) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, peg := range c {
		if i > 0 {
			b.WriteString(", ")
		}
		writeInts(&b, peg)
	}
	b.WriteByte(']')
	return b.String()
}

func writeInts(b *strings.Builder, values []int) {
	b.WriteByte('[')
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(v))
	}
	b.WriteByte(']')
}
