package secrets

import (
	"context"

	"github.com/kevin07696/paynearme-callbacks/internal/domain/ports"
)

// StaticSource returns a fixed shared secret. Used in tests and when the
// secret is injected directly through the environment.
type StaticSource struct {
	value string
}

// NewStaticSource creates a source returning value.
func NewStaticSource(value string) *StaticSource {
	return &StaticSource{value: value}
}

// SharedSecret returns the fixed secret.
func (s *StaticSource) SharedSecret(ctx context.Context) (string, error) {
	return s.value, nil
}

var _ ports.SecretSource = (*StaticSource)(nil)
