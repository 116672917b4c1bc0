package drawgen

import (
	"context"
	"fmt"
)

// ProviderConfig is one AI provider configuration held by the backend.
// System configurations are managed by the server: only Enabled may be
// changed and their BaseURL and APIKey come back masked.
type ProviderConfig struct {
	ID       string
	Name     string
	BaseURL  string
	APIKey   string
	Model    string
	Enabled  bool
	Priority int // lower is tried first
	IsSystem bool
}

// ConfigUpdate is a partial update; nil fields are left unchanged.
type ConfigUpdate struct {
	Name     *string
	BaseURL  *string
	APIKey   *string
	Model    *string
	Enabled  *bool
	Priority *int
}

// ConfigService is CRUD over the backend's provider configurations.
// Get, Update and Delete return an error wrapping ErrNotFound for an unknown
// id and ErrForbidden when the backend refuses the change.
type ConfigService interface {
	List(ctx context.Context) ([]ProviderConfig, error)
	Get(ctx context.Context, id string) (ProviderConfig, error)
	Create(ctx context.Context, cfg ProviderConfig) (ProviderConfig, error)
	Update(ctx context.Context, id string, upd ConfigUpdate) (ProviderConfig, error)
	Delete(ctx context.Context, id string) error
}

// EnableExclusive sets the enabled flag of the configuration with id. When
// enabling, every other enabled configuration is disabled first so at most
// one configuration is enabled afterwards.
func EnableExclusive(ctx context.Context, svc ConfigService, id string, enabled bool) (ProviderConfig, error) {
	if enabled {
		cfgs, err := svc.List(ctx)
		if err != nil {
			return ProviderConfig{}, fmt.Errorf("list configs: %w", err)
		}
		off := false
		for _, c := range cfgs {
			if !c.Enabled || c.ID == id {
				continue
			}
			if _, err := svc.Update(ctx, c.ID, ConfigUpdate{Enabled: &off}); err != nil {
				return ProviderConfig{}, fmt.Errorf("disable config %s: %w", c.ID, err)
			}
		}
	}
	return svc.Update(ctx, id, ConfigUpdate{Enabled: &enabled})
}
