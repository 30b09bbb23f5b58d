// Package domain holds the learner-facing types shared across the client:
// identities, roles, exercises and the error taxonomy.
package domain

import "strings"

// Role is the learner's target career track.
type Role string

// The four roles the backend accepts. The string values are the wire values.
const (
	RoleSDE           Role = "SDE"
	RoleDataAnalyst   Role = "Data Analyst"
	RoleDataScientist Role = "Data Scientist"
	RoleMLEngineer    Role = "ML Engineer"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleSDE, RoleDataAnalyst, RoleDataScientist, RoleMLEngineer}

// RoleInfo describes a role for the role picker.
type RoleInfo struct {
	Role        Role
	Title       string
	Description string
	Tracks      []string
}

// RoleCatalog is the role picker content, indexed in the same order as Roles.
var RoleCatalog = []RoleInfo{
	{
		Role:        RoleSDE,
		Title:       "Software Development Engineer",
		Description: "Build scalable systems, master DSA, and crack coding interviews",
		Tracks:      []string{"Data Structures & Algorithms", "System Design", "OOP Concepts"},
	},
	{
		Role:        RoleDataAnalyst,
		Title:       "Data Analyst",
		Description: "Transform data into insights with SQL, Python, and visualization",
		Tracks:      []string{"SQL Mastery", "Python for Data", "Visualization"},
	},
	{
		Role:        RoleDataScientist,
		Title:       "Data Scientist",
		Description: "Build ML models and solve complex business problems",
		Tracks:      []string{"Statistics", "Machine Learning", "Deep Learning"},
	},
	{
		Role:        RoleMLEngineer,
		Title:       "ML Engineer",
		Description: "Deploy ML systems at scale with production-grade pipelines",
		Tracks:      []string{"MLOps", "Model Optimization", "Distributed Systems"},
	},
}

// Valid reports whether r is one of the four enumerated roles.
func (r Role) Valid() bool {
	for _, candidate := range Roles {
		if r == candidate {
			return true
		}
	}
	return false
}

// ParseRole resolves user input to a Role. It accepts the wire value or a
// short alias ("sde", "analyst", "scientist", "ml"), case-insensitively.
func ParseRole(s string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, r := range Roles {
		if normalized == strings.ToLower(string(r)) {
			return r, nil
		}
	}
	switch normalized {
	case "sde":
		return RoleSDE, nil
	case "analyst", "data-analyst", "da":
		return RoleDataAnalyst, nil
	case "scientist", "data-scientist", "ds":
		return RoleDataScientist, nil
	case "ml", "ml-engineer", "mle":
		return RoleMLEngineer, nil
	}
	return "", &ValidationError{Field: "role", Message: "Please select a role to continue"}
}

// Level is the learner's progression tier, computed server-side from points.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Identity is the authenticated learner's profile.
// Role is empty until the learner picks one.
type Identity struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role,omitempty"`
	Points int    `json:"points"`
	Level  Level  `json:"level"`
}

// HasRole reports whether the identity has completed role selection.
func (i *Identity) HasRole() bool {
	return i != nil && i.Role != ""
}

// FirstName returns the first word of the learner's name.
func (i *Identity) FirstName() string {
	if i == nil {
		return ""
	}
	fields := strings.Fields(i.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
