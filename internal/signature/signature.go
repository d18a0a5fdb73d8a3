package signature

import (
	"context"
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"

	"github.com/kevin07696/paynearme-callbacks/internal/domain"
	"github.com/kevin07696/paynearme-callbacks/internal/domain/ports"
)

// Signer computes and verifies PayNearMe callback signatures (protocol
// version 2.0): every parameter except "signature" is sorted
// lexicographically by name, each name is concatenated with its value, the
// shared secret is appended, and the whole string is MD5-hashed to lowercase
// hex. Verification is a pure function of the parameters and the secret.
type Signer struct {
	secrets ports.SecretSource
}

// NewSigner creates a signer backed by the given shared-secret source.
func NewSigner(secrets ports.SecretSource) *Signer {
	return &Signer{secrets: secrets}
}

// Expected computes the signature the processor should have sent for the
// given parameter set.
func (s *Signer) Expected(ctx context.Context, params url.Values) (string, error) {
	secret, err := s.secrets.SharedSecret(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch shared secret: %w", err)
	}
	return Sign(params, secret), nil
}

// Verify compares the supplied signature against the expected one using a
// constant-time comparison.
func (s *Signer) Verify(ctx context.Context, req *domain.CallbackRequest) (bool, error) {
	expected, err := s.Expected(ctx, req.Params)
	if err != nil {
		return false, err
	}
	return hmac.Equal([]byte(expected), []byte(req.Signature)), nil
}

// Sign canonicalizes params and produces the v2.0 signature with the given
// secret. Exposed so tests and outbound tooling can build signed requests.
func Sign(params url.Values, secret string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		if key == "signature" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var canonical []byte
	for _, key := range keys {
		canonical = append(canonical, key...)
		canonical = append(canonical, params.Get(key)...)
	}
	canonical = append(canonical, secret...)

	sum := md5.Sum(canonical)
	return hex.EncodeToString(sum[:])
}

var _ ports.SignatureVerifier = (*Signer)(nil)
