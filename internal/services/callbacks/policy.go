package callbacks

import (
	"context"
	"strings"

	"github.com/kevin07696/paynearme-callbacks/internal/domain"
	"github.com/kevin07696/paynearme-callbacks/internal/domain/ports"
)

// PrefixPolicy accepts payments whose site order identifier starts with a
// configured prefix. This mirrors the sandbox convention of accepting
// "TEST"-prefixed orders; production deployments plug in a policy that
// checks the merchant's order system instead.
type PrefixPolicy struct {
	Prefix string
}

// Evaluate reports whether the order should be accepted.
func (p PrefixPolicy) Evaluate(ctx context.Context, req *domain.CallbackRequest) (bool, error) {
	return strings.HasPrefix(req.SiteOrderIdentifier, p.Prefix), nil
}

var _ ports.AuthorizePolicy = PrefixPolicy{}
