package json

import (
	"encoding/json"

	"github.com/fwojciec/drawgen"
)

// requestDTO is the body of POST /api/generate-diagram-stream.
type requestDTO struct {
	Prompt       string            `json:"prompt"`
	Messages     []json.RawMessage `json:"messages"`
	SkipAPIs     []string          `json:"skip_apis"`
	SystemPrompt string            `json:"system_prompt,omitempty"`
}

// MarshalRequest encodes a generation request. Empty history and skip lists
// are sent as empty arrays.
func MarshalRequest(req drawgen.Request) ([]byte, error) {
	dto := requestDTO{
		Prompt:       req.Prompt,
		Messages:     []json.RawMessage(req.Messages),
		SkipAPIs:     req.SkipAPIs,
		SystemPrompt: req.SystemPrompt,
	}
	if dto.Messages == nil {
		dto.Messages = []json.RawMessage{}
	}
	if dto.SkipAPIs == nil {
		dto.SkipAPIs = []string{}
	}
	return json.Marshal(dto)
}

// UnmarshalRequest decodes a generation request body.
func UnmarshalRequest(data []byte) (drawgen.Request, error) {
	var dto requestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return drawgen.Request{}, err
	}
	return drawgen.Request{
		Prompt:       dto.Prompt,
		Messages:     drawgen.History(dto.Messages),
		SkipAPIs:     dto.SkipAPIs,
		SystemPrompt: dto.SystemPrompt,
	}, nil
}
