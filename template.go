package drawgen

// Template is a named system prompt the user can pick to steer generation.
type Template struct {
	Name         string
	Description  string
	SystemPrompt string
	Path         string // source file
}
