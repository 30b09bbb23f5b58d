package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestProgressPlainPrintsTransitionsOnce(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "Voice message")
	p.Add("record", "Recording")
	p.Add("reply", "Waiting for BRO")

	p.Begin("record")
	p.Begin("record")
	p.Done("record")
	p.Begin("reply")
	p.Fail("reply")
	p.Finish()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{"Recording ...", "Recording DONE [0s]", "Waiting for BRO ...", "Waiting for BRO FAILED"}
	if len(lines) != len(want) {
		t.Fatalf("lines: got %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestProgressUnknownStepIgnored(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "x")
	p.Done("missing")
	if buf.Len() != 0 {
		t.Errorf("output: got %q, want empty", buf.String())
	}
}

func TestProgressSteps(t *testing.T) {
	p := NewProgress(&bytes.Buffer{}, "x")
	p.Add("a", "A")
	p.Begin("a")
	p.Done("a")

	steps := p.Steps()
	if len(steps) != 1 || steps[0].Status != StepDone {
		t.Errorf("steps: got %+v", steps)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{45 * time.Second, "45s"},
		{90 * time.Second, "1m30s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h2m3s"},
	}
	for _, c := range cases {
		if got := formatDuration(c.d); got != c.want {
			t.Errorf("formatDuration(%v): got %q, want %q", c.d, got, c.want)
		}
	}
}
