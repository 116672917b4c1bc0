package drawgen

import (
	"fmt"
	"strings"
)

// Request carries one generation call to the backend.
type Request struct {
	Prompt       string
	Messages     History  // canonical history from the previous completion
	SkipAPIs     []string // providers that failed earlier; the server skips them
	SystemPrompt string   // empty = server default
}

// Validate checks universal constraints on Request.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("prompt must not be empty: %w", ErrValidation)
	}
	for i, api := range r.SkipAPIs {
		if api == "" {
			return fmt.Errorf("skip_apis[%d] must not be empty: %w", i, ErrValidation)
		}
	}
	return nil
}
