package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	pkgsecrets "github.com/UnlockdFinance/unlockd-v2/pkg/secrets"
)

var ErrMissingAPIKey = errors.New("reservoir API key not configured")

// APIKeyField is the key read from the secret's JSON map.
const APIKeyField = "api_key"

// APIKeyResolver resolves the Reservoir API key: the environment value wins,
// otherwise it is read from AWS Secrets Manager and cached locally.
type APIKeyResolver struct {
	logger     *zap.Logger
	envKey     string
	secretName string
	provider   pkgsecrets.Provider
	cache      *pkgsecrets.Cache[string]
}

// NewAPIKeyResolver constructs a resolver. provider may be nil when
// secretName is empty.
func NewAPIKeyResolver(
	logger *zap.Logger,
	envKey string,
	secretName string,
	provider pkgsecrets.Provider,
	cache *pkgsecrets.Cache[string],
) *APIKeyResolver {
	return &APIKeyResolver{
		logger:     logger,
		envKey:     strings.TrimSpace(envKey),
		secretName: strings.TrimSpace(secretName),
		provider:   provider,
		cache:      cache,
	}
}

// Resolve returns the API key.
func (r *APIKeyResolver) Resolve(ctx context.Context) (string, error) {
	if r.envKey != "" {
		return r.envKey, nil
	}
	if r.secretName == "" || r.provider == nil {
		return "", ErrMissingAPIKey
	}

	if key, ok := r.cache.Get(r.secretName); ok {
		return key, nil
	}

	secretMap, err := r.provider.GetSecret(ctx, r.secretName)
	if err != nil {
		r.logger.Warn("aws.secret_fetch_failed",
			zap.String("key", r.secretName),
			zap.Error(err))
		return "", fmt.Errorf("resolve reservoir API key: %w", err)
	}

	key := strings.TrimSpace(secretMap[APIKeyField])
	if key == "" {
		return "", fmt.Errorf("%w: secret %q has no %q field", ErrMissingAPIKey, r.secretName, APIKeyField)
	}

	r.cache.Put(r.secretName, key)
	r.logger.Info("aws.api_key_resolved", zap.String("secret", r.secretName))
	return key, nil
}
