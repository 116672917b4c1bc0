package drawgen

// Role represents the author of a transcript record.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)
