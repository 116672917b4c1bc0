// Package json encodes and decodes the backend's wire formats: stream event
// payloads, the generation request body and the provider-configuration
// resource.
package json

import "encoding/json"

// DecodeErrorDetail extracts a human-readable message from an error
// response body. FastAPI reports errors as {"detail": "..."}; bodies in any
// other shape are returned verbatim.
func DecodeErrorDetail(data []byte) string {
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return string(data)
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err == nil && detail != "" {
		return detail
	}
	if body.Message != "" {
		return body.Message
	}
	if len(body.Detail) > 0 {
		return string(body.Detail)
	}
	return string(data)
}
