package json

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/drawgen"
)

// Event type discriminators used by the backend.
const (
	typeContent          = "content"
	typeValidationFailed = "validation_failed"
	typeError            = "error"
	typeFailed           = "failed"
	typeComplete         = "complete"
	typeStart            = "start"
	typeSkip             = "skip"
)

// eventDTO is the JSON representation of a stream event with a type
// discriminator. Fields unused by a given type are left zero.
type eventDTO struct {
	Type     string            `json:"type"`
	Content  *string           `json:"content"`
	Message  string            `json:"message"`
	Error    string            `json:"error"`
	XML      string            `json:"xml"`
	Messages []json.RawMessage `json:"messages"`
	APIUsed  string            `json:"api_used"`
	API      string            `json:"api"`
}

// DecodeEvent parses one event payload (the text after the "data: " prefix).
// Well-formed payloads with an unrecognized or missing type decode to
// drawgen.EventUnknown. Errors wrap drawgen.ErrDecode.
func DecodeEvent(data []byte) (drawgen.Event, error) {
	var dto eventDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("%w: %v", drawgen.ErrDecode, err)
	}
	switch dto.Type {
	case typeContent:
		if dto.Content == nil {
			return nil, fmt.Errorf("%w: content event without content", drawgen.ErrDecode)
		}
		return drawgen.EventContent{Content: *dto.Content}, nil
	case typeValidationFailed:
		return drawgen.EventValidationFailed{Message: dto.Message, Detail: dto.Error}, nil
	case typeError, typeFailed:
		return drawgen.EventFailed{Type: dto.Type, Message: dto.Message}, nil
	case typeComplete:
		return drawgen.EventComplete{
			XML:      dto.XML,
			Messages: drawgen.History(dto.Messages),
			APIUsed:  dto.APIUsed,
		}, nil
	case typeStart:
		return drawgen.EventStart{API: dto.API}, nil
	case typeSkip:
		return drawgen.EventSkip{API: dto.API}, nil
	default:
		return drawgen.EventUnknown{Type: dto.Type}, nil
	}
}

// EncodeEvent is the inverse of DecodeEvent. It is used by test servers and
// tools that replay recorded streams.
func EncodeEvent(evt drawgen.Event) ([]byte, error) {
	var dto any
	switch e := evt.(type) {
	case drawgen.EventContent:
		dto = struct {
			Type    string `json:"type"`
			Content string `json:"content"`
		}{typeContent, e.Content}
	case drawgen.EventValidationFailed:
		dto = struct {
			Type    string `json:"type"`
			Message string `json:"message"`
			Error   string `json:"error,omitempty"`
		}{typeValidationFailed, e.Message, e.Detail}
	case drawgen.EventFailed:
		typ := e.Type
		if typ == "" {
			typ = typeError
		}
		dto = struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}{typ, e.Message}
	case drawgen.EventComplete:
		msgs := []json.RawMessage(e.Messages)
		if msgs == nil {
			msgs = []json.RawMessage{}
		}
		dto = struct {
			Type     string            `json:"type"`
			XML      string            `json:"xml"`
			APIUsed  string            `json:"api_used,omitempty"`
			Messages []json.RawMessage `json:"messages"`
		}{typeComplete, e.XML, e.APIUsed, msgs}
	case drawgen.EventStart:
		dto = struct {
			Type string `json:"type"`
			API  string `json:"api"`
		}{typeStart, e.API}
	case drawgen.EventSkip:
		dto = struct {
			Type string `json:"type"`
			API  string `json:"api"`
		}{typeSkip, e.API}
	case drawgen.EventUnknown:
		dto = struct {
			Type string `json:"type"`
		}{e.Type}
	default:
		return nil, fmt.Errorf("unknown event type %T", evt)
	}
	return json.Marshal(dto)
}
