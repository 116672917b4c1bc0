// Package mock provides test doubles for drawgen interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/drawgen"
)

// Interface compliance check.
var _ drawgen.Transport = (*Transport)(nil)

// Transport is a test double for drawgen.Transport.
// Set OpenFn before calling Open.
type Transport struct {
	OpenFn func(ctx context.Context, req drawgen.Request) (drawgen.Stream, error)
}

// Open delegates to OpenFn.
func (t *Transport) Open(ctx context.Context, req drawgen.Request) (drawgen.Stream, error) {
	return t.OpenFn(ctx, req)
}
