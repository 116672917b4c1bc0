package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fwojciec/drawgen"
	"github.com/fwojciec/drawgen/json"
)

// Interface compliance check.
var _ drawgen.ConfigService = (*ConfigService)(nil)

// ConfigService implements [drawgen.ConfigService] over the backend's
// provider-configuration resource.
type ConfigService struct {
	client *Client
}

// NewConfigService creates a ConfigService that shares c's base URL, HTTP
// client and logger.
func NewConfigService(c *Client) *ConfigService {
	return &ConfigService{client: c}
}

func (s *ConfigService) List(ctx context.Context) ([]drawgen.ProviderConfig, error) {
	resp, err := s.do(ctx, http.MethodGet, configsPath, nil)
	if err != nil {
		return nil, err
	}
	return resp.Configs, nil
}

func (s *ConfigService) Get(ctx context.Context, id string) (drawgen.ProviderConfig, error) {
	resp, err := s.do(ctx, http.MethodGet, configPath(id), nil)
	if err != nil {
		return drawgen.ProviderConfig{}, err
	}
	return single(resp)
}

func (s *ConfigService) Create(ctx context.Context, cfg drawgen.ProviderConfig) (drawgen.ProviderConfig, error) {
	body, err := json.MarshalConfigCreate(cfg)
	if err != nil {
		return drawgen.ProviderConfig{}, fmt.Errorf("backend: %w", err)
	}
	resp, err := s.do(ctx, http.MethodPost, configsPath, body)
	if err != nil {
		return drawgen.ProviderConfig{}, err
	}
	return single(resp)
}

func (s *ConfigService) Update(ctx context.Context, id string, upd drawgen.ConfigUpdate) (drawgen.ProviderConfig, error) {
	body, err := json.MarshalConfigUpdate(upd)
	if err != nil {
		return drawgen.ProviderConfig{}, fmt.Errorf("backend: %w", err)
	}
	resp, err := s.do(ctx, http.MethodPut, configPath(id), body)
	if err != nil {
		return drawgen.ProviderConfig{}, err
	}
	return single(resp)
}

func (s *ConfigService) Delete(ctx context.Context, id string) error {
	_, err := s.do(ctx, http.MethodDelete, configPath(id), nil)
	return err
}

func configPath(id string) string {
	return configsPath + "/" + url.PathEscape(id)
}

func single(resp json.ConfigResponse) (drawgen.ProviderConfig, error) {
	if resp.Config == nil {
		return drawgen.ProviderConfig{}, fmt.Errorf("backend: response has no config")
	}
	return *resp.Config, nil
}

func (s *ConfigService) do(ctx context.Context, method, path string, body []byte) (json.ConfigResponse, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.client.baseURL+path, r)
	if err != nil {
		return json.ConfigResponse{}, fmt.Errorf("backend: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	s.client.logger.Debug("config request", "method", method, "path", path)
	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return json.ConfigResponse{}, fmt.Errorf("backend: %w: %w", drawgen.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return json.ConfigResponse{}, fmt.Errorf("backend: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return json.ConfigResponse{}, fmt.Errorf("backend: %w: %s", drawgen.ErrNotFound, errorDetail(resp, data))
	case resp.StatusCode == http.StatusForbidden:
		return json.ConfigResponse{}, fmt.Errorf("backend: %w: %s", drawgen.ErrForbidden, errorDetail(resp, data))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return json.ConfigResponse{}, fmt.Errorf("backend: %w: HTTP %d: %s", drawgen.ErrRequestFailed, resp.StatusCode, errorDetail(resp, data))
	}

	out, err := json.UnmarshalConfigResponse(data)
	if err != nil {
		return json.ConfigResponse{}, fmt.Errorf("backend: %w", err)
	}
	if !out.Success {
		return json.ConfigResponse{}, fmt.Errorf("backend: request unsuccessful: %s", out.Message)
	}
	return out, nil
}

func errorDetail(resp *http.Response, data []byte) string {
	detail := strings.TrimSpace(json.DecodeErrorDetail(data))
	if detail == "" {
		return http.StatusText(resp.StatusCode)
	}
	return detail
}
