package hanoi

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	errNotList = errors.New("not a list")
	errNotInt  = errors.New("values must be integers")

	movePattern  = regexp.MustCompile(`(?is)\bmove\b\s*=\s*(\[[^\[\]]*\])`)
	statePattern = regexp.MustCompile(
		`(?is)\bnext_state\b\s*=\s*(\[\s*\[[^\[\]]*\]\s*,\s*\[[^\[\]]*\]\s*,\s*\[[^\[\]]*\]\s*\])`)
)

// ParseResponse extracts the declared move and resulting configuration from
// raw oracle text. Replies may contain drafts; the last declaration of each
// wins. Every failure wraps ErrMalformedResponse.
func ParseResponse(text string, diskCount int) (Action, Configuration, error) {
	moveLiteral, ok := lastMatch(movePattern, text)
	if !ok {
		return Action{}, Configuration{}, fmt.Errorf("%w: no 'move = [...]' found", ErrMalformedResponse)
	}
	stateLiteral, ok := lastMatch(statePattern, text)
	if !ok {
		return Action{}, Configuration{}, fmt.Errorf("%w: no 'next_state = [[...],[...],[...]]' found", ErrMalformedResponse)
	}

	move, err := intList(moveLiteral)
	if err != nil {
		return Action{}, Configuration{}, fmt.Errorf("%w: could not parse move %q: %v", ErrMalformedResponse, moveLiteral, err)
	}
	pegs, err := intLists(stateLiteral)
	if err != nil {
		return Action{}, Configuration{}, fmt.Errorf("%w: could not parse next_state %q: %v", ErrMalformedResponse, stateLiteral, err)
	}

	action, err := checkMoveShape(move)
	if err != nil {
		return Action{}, Configuration{}, err
	}
	next, err := checkStateShape(pegs, diskCount)
	if err != nil {
		return Action{}, Configuration{}, err
	}
	return action, next, nil
}

// intList decodes a flow sequence whose items are all YAML integers. Floats
// such as 1.0 are refused rather than truncated.
func intList(literal string) ([]int, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(literal), &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) != 1 {
		return nil, errNotList
	}
	return sequenceInts(doc.Content[0])
}

// intLists decodes a sequence of integer sequences.
func intLists(literal string) ([][]int, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(literal), &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) != 1 || doc.Content[0].Kind != yaml.SequenceNode {
		return nil, errNotList
	}
	out := make([][]int, 0, len(doc.Content[0].Content))
	for _, item := range doc.Content[0].Content {
		ints, err := sequenceInts(item)
		if err != nil {
			return nil, err
		}
		out = append(out, ints)
	}
	return out, nil
}

func sequenceInts(n *yaml.Node) ([]int, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, errNotList
	}
	out := make([]int, 0, len(n.Content))
	for _, item := range n.Content {
		if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!int" {
			return nil, fmt.Errorf("%w, got %q", errNotInt, item.Value)
		}
		var v int
		if err := item.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func lastMatch(re *regexp.Regexp, text string) (string, bool) {
	matches := re.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return "", false
	}
	return matches[len(matches)-1][1], true
}

func checkMoveShape(move []int) (Action, error) {
	if len(move) != 3 {
		return Action{}, fmt.Errorf("%w: move must be a list of exactly 3 integers, got %v", ErrMalformedResponse, move)
	}
	a := Action{Disk: move[0], From: move[1], To: move[2]}
	if a.From < 0 || a.From >= PegCount || a.To < 0 || a.To >= PegCount {
		return Action{}, fmt.Errorf("%w: peg indices must be 0-2, got %s", ErrMalformedResponse, a)
	}
	if a.From == a.To {
		return Action{}, fmt.Errorf("%w: cannot move from peg to same peg: %s", ErrMalformedResponse, a)
	}
	return a, nil
}

func checkStateShape(pegs [][]int, diskCount int) (Configuration, error) {
	var c Configuration
	if len(pegs) != PegCount {
		return c, fmt.Errorf("%w: next_state must be a list of three lists", ErrMalformedResponse)
	}

	seen := make(map[int]int, diskCount)
	var extra, duplicate []int
	total := 0
	for i, peg := range pegs {
		c[i] = append(make([]int, 0, len(peg)), peg...)
		for _, d := range peg {
			total++
			seen[d]++
			switch {
			case d < 1 || d > diskCount:
				extra = append(extra, d)
			case seen[d] == 2:
				duplicate = append(duplicate, d)
			}
		}
	}
	var missing []int
	for d := 1; d <= diskCount; d++ {
		if seen[d] == 0 {
			missing = append(missing, d)
		}
	}
	if total != diskCount || len(missing) > 0 || len(extra) > 0 || len(duplicate) > 0 {
		sort.Ints(extra)
		sort.Ints(duplicate)
		return Configuration{}, fmt.Errorf("%w: state must contain 1..%d exactly once. Missing: %v, Extras: %v, Duplicates: %v",
			ErrMalformedResponse, diskCount, listOrEmpty(missing), listOrEmpty(extra), listOrEmpty(duplicate))
	}

	for i, peg := range c {
		for j := 1; j < len(peg); j++ {
			if peg[j] > peg[j-1] {
				return Configuration{}, fmt.Errorf("%w: peg %d has invalid disk order: %v", ErrMalformedResponse, i, peg)
			}
		}
	}
	return c, nil
}

func listOrEmpty(values []int) []int {
	if values == nil {
		return []int{}
	}
	return values
}
