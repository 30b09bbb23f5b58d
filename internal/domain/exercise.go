package domain

// ExerciseType classifies what an exercise asks of the learner.
type ExerciseType string

const (
	TypeCoding    ExerciseType = "coding"
	TypeConcept   ExerciseType = "concept"
	TypeDebugging ExerciseType = "debugging"
)

// Difficulty is optional on an exercise; some tracks omit it.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Exercise is one gradable problem. Completed and Attempts come from the
// server and are patched locally after a successful submission.
type Exercise struct {
	ID                  string       `json:"id"`
	Title               string       `json:"title"`
	Type                ExerciseType `json:"type"`
	Difficulty          Difficulty   `json:"difficulty,omitempty"`
	Points              int          `json:"points"`
	Description         string       `json:"description"`
	StarterCode         string       `json:"starter_code"`
	Hints               []string     `json:"hints"`
	SolutionExplanation string       `json:"solution_explanation"`
	Completed           bool         `json:"completed"`
	Attempts            int          `json:"attempts"`
}

// TrackSummary is one entry of the track overview.
type TrackSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Order          int    `json:"order"`
	TotalTasks     int    `json:"total_tasks"`
	CompletedTasks int    `json:"completed_tasks"`
}

// Track is a track together with its exercises.
type Track struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	TotalTasks     int        `json:"total_tasks"`
	CompletedTasks int        `json:"completed_tasks"`
	Tasks          []Exercise `json:"tasks"`
}

// ProgressPercent returns completed/total as a rounded percentage.
func ProgressPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return (completed*100 + total/2) / total
}
