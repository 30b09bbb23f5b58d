package mentor

// QuickPrompt is a canned opener offered by the floating mentor.
type QuickPrompt struct {
	Label   string
	Message string
}

// QuickPrompts are offered in display order.
var QuickPrompts = []QuickPrompt{
	{Label: "Explain Two Sum", Message: "Can you explain the Two Sum problem and give me hints?"},
	{Label: "Resume Tips", Message: "What are the best tips for writing a tech resume?"},
	{Label: "Interview Prep", Message: "How should I prepare for coding interviews?"},
	{Label: "DSA Strategy", Message: "What's the best strategy to learn DSA effectively?"},
}

// ModeForFlag maps a CLI/TUI mode name to its context label.
func ModeForFlag(name string) (string, bool) {
	switch name {
	case "", "general":
		return ModeGeneral, true
	case "resume":
		return ModeResume, true
	default:
		return "", false
	}
}
