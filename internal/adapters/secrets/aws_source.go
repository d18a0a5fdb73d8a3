package secrets

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"

	"github.com/kevin07696/paynearme-callbacks/internal/domain/ports"
)

// AWSSourceConfig contains configuration for the AWS Secrets Manager source.
type AWSSourceConfig struct {
	// AWS Region (e.g., "us-east-1")
	Region string

	// Name or ARN of the secret holding the shared callback secret
	SecretName string

	// Optional: AWS profile name (for local development)
	Profile string

	// Cache TTL for the secret (default: 5 minutes)
	CacheTTL time.Duration
}

// AWSSource implements SecretSource against AWS Secrets Manager.
type AWSSource struct {
	client *secretsmanager.Client
	config *AWSSourceConfig
	logger *zap.Logger
	cache  *secretCache
}

// NewAWSSource creates an AWS Secrets Manager backed secret source.
func NewAWSSource(ctx context.Context, cfg *AWSSourceConfig, logger *zap.Logger) (*AWSSource, error) {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	var awsCfg aws.Config
	var err error
	if cfg.Profile != "" {
		// Use specific profile (local development)
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithSharedConfigProfile(cfg.Profile),
		)
	} else {
		// Use default credentials chain (IAM role in production)
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &AWSSource{
		client: secretsmanager.NewFromConfig(awsCfg),
		config: cfg,
		logger: logger,
		cache:  newSecretCache(cfg.CacheTTL),
	}, nil
}

// SharedSecret fetches the secret value, serving from cache within the TTL.
func (s *AWSSource) SharedSecret(ctx context.Context) (string, error) {
	if value, ok := s.cache.get(); ok {
		return value, nil
	}

	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(s.config.SecretName),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", s.config.SecretName, err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return "", fmt.Errorf("secret %s has no string value", s.config.SecretName)
	}

	s.logger.Debug("Fetched shared secret from AWS Secrets Manager",
		zap.String("secret_name", s.config.SecretName),
	)
	s.cache.set(*out.SecretString)
	return *out.SecretString, nil
}

var _ ports.SecretSource = (*AWSSource)(nil)
