package json

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/drawgen"
)

// configDTO is the JSON representation of a provider configuration.
type configDTO struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	BaseURL  string `json:"base_url"`
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
	Enabled  bool   `json:"enabled"`
	Priority int    `json:"priority"`
	IsSystem bool   `json:"is_system,omitempty"`
}

type configUpdateDTO struct {
	Name     *string `json:"name,omitempty"`
	BaseURL  *string `json:"base_url,omitempty"`
	APIKey   *string `json:"api_key,omitempty"`
	Model    *string `json:"model,omitempty"`
	Enabled  *bool   `json:"enabled,omitempty"`
	Priority *int    `json:"priority,omitempty"`
}

// envelope wraps every /api/ai-configs response. FastAPI errors carry only
// Detail.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Detail  string      `json:"detail,omitempty"`
	Total   int         `json:"total,omitempty"`
	Config  *configDTO  `json:"config,omitempty"`
	Configs []configDTO `json:"configs,omitempty"`
}

// ConfigResponse is a decoded /api/ai-configs response.
type ConfigResponse struct {
	Success bool
	Message string
	Detail  string
	Config  *drawgen.ProviderConfig
	Configs []drawgen.ProviderConfig
}

// MarshalConfigCreate encodes the body of a create request. ID and IsSystem
// are assigned by the server and are not sent.
func MarshalConfigCreate(cfg drawgen.ProviderConfig) ([]byte, error) {
	dto := fromConfig(cfg)
	dto.ID = ""
	dto.IsSystem = false
	return json.Marshal(dto)
}

// MarshalConfigUpdate encodes a partial update; only set fields are sent.
func MarshalConfigUpdate(upd drawgen.ConfigUpdate) ([]byte, error) {
	return json.Marshal(configUpdateDTO{
		Name:     upd.Name,
		BaseURL:  upd.BaseURL,
		APIKey:   upd.APIKey,
		Model:    upd.Model,
		Enabled:  upd.Enabled,
		Priority: upd.Priority,
	})
}

// UnmarshalConfigResponse decodes a response envelope.
func UnmarshalConfigResponse(data []byte) (ConfigResponse, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ConfigResponse{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	resp := ConfigResponse{
		Success: env.Success,
		Message: env.Message,
		Detail:  env.Detail,
	}
	if env.Config != nil {
		c := toConfig(*env.Config)
		resp.Config = &c
	}
	for _, dto := range env.Configs {
		resp.Configs = append(resp.Configs, toConfig(dto))
	}
	return resp, nil
}

// MarshalConfigResponse encodes a response envelope. Test servers use it to
// answer like the backend.
func MarshalConfigResponse(resp ConfigResponse) ([]byte, error) {
	env := envelope{
		Success: resp.Success,
		Message: resp.Message,
		Detail:  resp.Detail,
	}
	if resp.Config != nil {
		dto := fromConfig(*resp.Config)
		env.Config = &dto
	}
	if resp.Configs != nil {
		env.Configs = make([]configDTO, len(resp.Configs))
		for i, c := range resp.Configs {
			env.Configs[i] = fromConfig(c)
		}
		env.Total = len(resp.Configs)
	}
	return json.Marshal(env)
}

// UnmarshalConfigUpdate decodes a partial update body.
func UnmarshalConfigUpdate(data []byte) (drawgen.ConfigUpdate, error) {
	var dto configUpdateDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return drawgen.ConfigUpdate{}, err
	}
	return drawgen.ConfigUpdate{
		Name:     dto.Name,
		BaseURL:  dto.BaseURL,
		APIKey:   dto.APIKey,
		Model:    dto.Model,
		Enabled:  dto.Enabled,
		Priority: dto.Priority,
	}, nil
}

func fromConfig(c drawgen.ProviderConfig) configDTO {
	return configDTO{
		ID:       c.ID,
		Name:     c.Name,
		BaseURL:  c.BaseURL,
		APIKey:   c.APIKey,
		Model:    c.Model,
		Enabled:  c.Enabled,
		Priority: c.Priority,
		IsSystem: c.IsSystem,
	}
}

func toConfig(dto configDTO) drawgen.ProviderConfig {
	return drawgen.ProviderConfig{
		ID:       dto.ID,
		Name:     dto.Name,
		BaseURL:  dto.BaseURL,
		APIKey:   dto.APIKey,
		Model:    dto.Model,
		Enabled:  dto.Enabled,
		Priority: dto.Priority,
		IsSystem: dto.IsSystem,
	}
}
