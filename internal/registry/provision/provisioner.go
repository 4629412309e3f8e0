// Package provision defines the port to the external compute factory that
// backs every registered name, plus a local implementation for environments
// without a real factory.
package provision

import (
	"context"

	"github.com/google/uuid"

	id "registrar/pkg/domain"
)

// Provisioner creates the external compute unit backing a name. A failed call
// must not be retried automatically; idempotency is not assumed. The engine
// surfaces the failure to the caller after rolling back its reservation.
type Provisioner interface {
	Provision(ctx context.Context, name string, owner, administrator, operator id.Principal) (id.ResourceID, error)
}

// Local mints opaque resource handles without talking to any factory. It
// stands in for the real compute provisioner in development and tests.
type Local struct{}

func NewLocal() *Local {
	return &Local{}
}

func (*Local) Provision(_ context.Context, _ string, _, _, _ id.Principal) (id.ResourceID, error) {
	return id.ResourceID(uuid.NewString()), nil
}
