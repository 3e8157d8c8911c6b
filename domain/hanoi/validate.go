package hanoi

import "fmt"

// CheckMove reports whether the action is legal on the current configuration.
// It does not look at any claimed resulting configuration.
func CheckMove(current Configuration, a Action) error {
	if a.From < 0 || a.From >= PegCount || a.To < 0 || a.To >= PegCount {
		return fmt.Errorf("%w: peg indices must be 0-2, got %s", ErrInvalidTransition, a)
	}
	if a.From == a.To {
		return fmt.Errorf("%w: cannot move from peg %d to itself", ErrInvalidTransition, a.From)
	}

	top, ok := current.Top(a.From)
	if !ok {
		return fmt.Errorf("%w: peg %d is empty", ErrInvalidTransition, a.From)
	}
	if top != a.Disk {
		return fmt.Errorf("%w: top disk on peg %d is %d, not %d", ErrInvalidTransition, a.From, top, a.Disk)
	}

	if dest, ok := current.Top(a.To); ok && dest < a.Disk {
		return fmt.Errorf("%w: cannot place disk %d onto smaller disk %d on peg %d",
			ErrInvalidTransition, a.Disk, dest, a.To)
	}
	return nil
}

// Validate checks that proposed is exactly the configuration obtained by
// applying a legal action to current. current is never modified.
func Validate(current Configuration, a Action, proposed Configuration) error {
	if err := CheckMove(current, a); err != nil {
		return err
	}

	simulated := Apply(current, a)
	if !simulated.Equal(proposed) {
		return fmt.Errorf("%w: next state does not match applying move %s: expected %s, got %s",
			ErrInvalidTransition, a, simulated, proposed)
	}
	return nil
}
