package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kevin07696/paynearme-callbacks/internal/domain"
	"github.com/kevin07696/paynearme-callbacks/internal/domain/ports"
)

// FlagInterceptor implements the special-condition Interceptor against a
// Redis flag. Operators park all callbacks during a maintenance window by
// setting the key to the response body that should be returned verbatim;
// deleting the key resumes normal handling.
type FlagInterceptor struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewFlagInterceptor creates an interceptor watching the given Redis key.
func NewFlagInterceptor(client *redis.Client, key string, logger *zap.Logger) *FlagInterceptor {
	return &FlagInterceptor{
		client: client,
		key:    key,
		logger: logger,
	}
}

// Intercept returns the parked response when the flag is set. Redis being
// unreachable fails open: callbacks keep flowing through normal handling.
func (i *FlagInterceptor) Intercept(ctx context.Context, req *domain.CallbackRequest) (*domain.Override, error) {
	body, err := i.client.Get(ctx, i.key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			i.logger.Warn("Special-condition flag lookup failed, continuing without override",
				zap.String("key", i.key),
				zap.Error(err),
			)
		}
		return nil, nil
	}

	i.logger.Warn("Special condition active, overriding callback handling",
		zap.String("key", i.key),
		zap.String("pnm_order_identifier", req.PNMOrderIdentifier),
	)
	return &domain.Override{
		ContentType: "application/xml",
		Body:        []byte(body),
	}, nil
}

var _ ports.Interceptor = (*FlagInterceptor)(nil)
