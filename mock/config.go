package mock

import (
	"context"

	"github.com/fwojciec/drawgen"
)

// Interface compliance check.
var _ drawgen.ConfigService = (*ConfigService)(nil)

// ConfigService is a test double for drawgen.ConfigService.
type ConfigService struct {
	ListFn   func(ctx context.Context) ([]drawgen.ProviderConfig, error)
	GetFn    func(ctx context.Context, id string) (drawgen.ProviderConfig, error)
	CreateFn func(ctx context.Context, cfg drawgen.ProviderConfig) (drawgen.ProviderConfig, error)
	UpdateFn func(ctx context.Context, id string, upd drawgen.ConfigUpdate) (drawgen.ProviderConfig, error)
	DeleteFn func(ctx context.Context, id string) error
}

// List delegates to ListFn.
func (s *ConfigService) List(ctx context.Context) ([]drawgen.ProviderConfig, error) {
	return s.ListFn(ctx)
}

// Get delegates to GetFn.
func (s *ConfigService) Get(ctx context.Context, id string) (drawgen.ProviderConfig, error) {
	return s.GetFn(ctx, id)
}

// Create delegates to CreateFn.
func (s *ConfigService) Create(ctx context.Context, cfg drawgen.ProviderConfig) (drawgen.ProviderConfig, error) {
	return s.CreateFn(ctx, cfg)
}

// Update delegates to UpdateFn.
func (s *ConfigService) Update(ctx context.Context, id string, upd drawgen.ConfigUpdate) (drawgen.ProviderConfig, error) {
	return s.UpdateFn(ctx, id, upd)
}

// Delete delegates to DeleteFn.
func (s *ConfigService) Delete(ctx context.Context, id string) error {
	return s.DeleteFn(ctx, id)
}
