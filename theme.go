package drawgen

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	UserMsg int // User record accent
	AIMsg   int // AI record header
	Error   int // Error markers and messages
	Success int // Completed records
	Muted   int // Status bar, placeholders
	CodeBg  int // Code block background
	Accent  int // Headings, links, spinner
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg: 4,
		AIMsg:   6,
		Error:   1,
		Success: 2,
		Muted:   8,
		CodeBg:  0,
		Accent:  5,
	}
}
