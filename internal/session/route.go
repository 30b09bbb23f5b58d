package session

// Screen identifies a top-level view.
type Screen int

const (
	ScreenSignIn Screen = iota
	ScreenRoleSelect
	ScreenCatalog
	ScreenExercise
	ScreenProfile
)

func (s Screen) String() string {
	switch s {
	case ScreenSignIn:
		return "sign-in"
	case ScreenRoleSelect:
		return "role-select"
	case ScreenCatalog:
		return "catalog"
	case ScreenExercise:
		return "exercise"
	case ScreenProfile:
		return "profile"
	default:
		return "unknown"
	}
}

// Verdict is what the presentation layer must do with a requested screen.
type Verdict int

const (
	// Wait renders a neutral indicator and makes no navigation decision.
	Wait Verdict = iota
	Redirect
	Render
)

// Decision is the outcome of gating a screen.
type Decision struct {
	Verdict Verdict
	Screen  Screen // destination for Redirect, the requested screen for Render
}

// Decide gates a requested screen on the current status. Sign-in is public,
// role selection only admits identities without a role, and every other
// screen requires a complete identity.
func (g *Guard) Decide(requested Screen) Decision {
	return decide(g.Status(), requested)
}

func decide(status Status, requested Screen) Decision {
	if requested == ScreenSignIn {
		return Decision{Verdict: Render, Screen: ScreenSignIn}
	}

	switch status {
	case StatusLoading:
		return Decision{Verdict: Wait, Screen: requested}
	case StatusUnauthenticated:
		return Decision{Verdict: Redirect, Screen: ScreenSignIn}
	}

	if requested == ScreenRoleSelect {
		if status == StatusComplete {
			return Decision{Verdict: Redirect, Screen: ScreenCatalog}
		}
		return Decision{Verdict: Render, Screen: ScreenRoleSelect}
	}

	if status == StatusIncomplete {
		return Decision{Verdict: Redirect, Screen: ScreenRoleSelect}
	}
	return Decision{Verdict: Render, Screen: requested}
}

// Landing is the screen to open after sign-in or startup.
func (g *Guard) Landing() Screen {
	switch g.Status() {
	case StatusComplete:
		return ScreenCatalog
	case StatusIncomplete:
		return ScreenRoleSelect
	default:
		return ScreenSignIn
	}
}
