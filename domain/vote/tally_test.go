package vote

import (
	"testing"

	"github.com/felixgeelhaar/maker-go/domain/hanoi"
)

func candidate(disk, from, to int) Candidate {
	a := hanoi.Action{Disk: disk, From: from, To: to}
	return Candidate{Action: a, Next: hanoi.Apply(hanoi.Start(3), a)}
}

func TestTally_AddAndCount(t *testing.T) {
	t.Parallel()

	tally := NewTally()
	if got := tally.Add(candidate(1, 0, 2)); got != 1 {
		t.Errorf("Add() = %d, want 1", got)
	}
	if got := tally.Add(candidate(1, 0, 2)); got != 2 {
		t.Errorf("Add() = %d, want 2", got)
	}
	tally.Add(candidate(1, 0, 1))

	if tally.Total() != 3 || tally.Len() != 2 {
		t.Errorf("Total=%d Len=%d, want 3 and 2", tally.Total(), tally.Len())
	}
	if got := tally.MaxOther("[1,0,2]"); got != 1 {
		t.Errorf("MaxOther() = %d, want 1", got)
	}
	if got := tally.MaxOther("[9,9,9]"); got != 2 {
		t.Errorf("MaxOther(unknown) = %d, want 2", got)
	}
}

func TestTally_Leads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		samples []Candidate
		key     string
		k       int
		want    bool
	}{
		{
			name:    "single vote with k=1",
			samples: []Candidate{candidate(1, 0, 2)},
			key:     "[1,0,2]",
			k:       1,
			want:    true,
		},
		{
			name:    "two votes against none with k=2",
			samples: []Candidate{candidate(1, 0, 2), candidate(1, 0, 2)},
			key:     "[1,0,2]",
			k:       2,
			want:    true,
		},
		{
			name:    "two against one with k=2",
			samples: []Candidate{candidate(1, 0, 2), candidate(1, 0, 1), candidate(1, 0, 2)},
			key:     "[1,0,2]",
			k:       2,
			want:    false,
		},
		{
			name:    "three against one with k=2",
			samples: []Candidate{candidate(1, 0, 2), candidate(1, 0, 1), candidate(1, 0, 2), candidate(1, 0, 2)},
			key:     "[1,0,2]",
			k:       2,
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tally := NewTally()
			for _, c := range tt.samples {
				tally.Add(c)
			}
			if got := tally.Leads(tt.key, tt.k); got != tt.want {
				t.Errorf("Leads(%s, %d) = %v, want %v", tt.key, tt.k, got, tt.want)
			}
		})
	}
}

func TestTally_PluralityTieGoesToFirstSeen(t *testing.T) {
	t.Parallel()

	tally := NewTally()
	if _, _, ok := tally.Plurality(); ok {
		t.Fatal("empty tally should have no plurality")
	}

	tally.Add(candidate(1, 0, 1))
	tally.Add(candidate(1, 0, 2))
	tally.Add(candidate(1, 0, 2))
	tally.Add(candidate(1, 0, 1))

	got, count, ok := tally.Plurality()
	if !ok {
		t.Fatal("expected a plurality")
	}
	if count != 2 {
		t.Errorf("Plurality() count = %d, want 2", count)
	}
	if got.Key() != "[1,0,1]" {
		t.Errorf("Plurality() = %s, want first seen [1,0,1]", got.Key())
	}
}

func TestTally_FirstCandidateKept(t *testing.T) {
	t.Parallel()

	tally := NewTally()
	first := candidate(1, 0, 2)
	second := Candidate{Action: first.Action, Next: hanoi.Goal(3)}
	tally.Add(first)
	tally.Add(second)

	snap := tally.Snapshot()
	if len(snap) != 1 || snap[0].Count != 2 {
		t.Fatalf("Snapshot() = %+v", snap)
	}
	if !snap[0].Candidate.Next.Equal(first.Next) {
		t.Errorf("Snapshot()[0].Candidate = %v, want first recorded candidate", snap[0].Candidate)
	}
}
