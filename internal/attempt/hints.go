package attempt

import "fmt"

// Hint is one revealed hint. Number is 1-based.
type Hint struct {
	Number int
	Text   string
}

func (h Hint) String() string {
	return fmt.Sprintf("Hint %d: %s", h.Number, h.Text)
}

// RequestHint reveals the next hint and advances the cursor. Once every hint
// has been shown it returns ErrHintsExhausted and the cursor stays put.
func (c *Controller) RequestHint() (Hint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exercise == nil {
		return Hint{}, ErrNotLoaded
	}
	if c.hintCursor >= len(c.exercise.Hints) {
		return Hint{}, ErrHintsExhausted
	}
	h := Hint{Number: c.hintCursor + 1, Text: c.exercise.Hints[c.hintCursor]}
	c.hintCursor++
	return h, nil
}

// HintCursor is the number of hints revealed so far.
func (c *Controller) HintCursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hintCursor
}

// HasHints reports whether RequestHint would reveal another hint.
func (c *Controller) HasHints() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exercise != nil && c.hintCursor < len(c.exercise.Hints)
}

// RevealedHints returns the hints shown so far, in order.
func (c *Controller) RevealedHints() []Hint {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exercise == nil {
		return nil
	}
	out := make([]Hint, 0, c.hintCursor)
	for i := 0; i < c.hintCursor; i++ {
		out = append(out, Hint{Number: i + 1, Text: c.exercise.Hints[i]})
	}
	return out
}

// RevealSolution latches the solution open and returns its explanation.
// There is no way to hide it again.
func (c *Controller) RevealSolution() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exercise == nil {
		return "", ErrNotLoaded
	}
	c.solutionRevealed = true
	return c.exercise.SolutionExplanation, nil
}

// SolutionRevealed reports whether the solution latch is set.
func (c *Controller) SolutionRevealed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.solutionRevealed
}
