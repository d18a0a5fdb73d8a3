package signature

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/paynearme-callbacks/internal/domain"
)

type staticSecret string

func (s staticSecret) SharedSecret(ctx context.Context) (string, error) {
	return string(s), nil
}

func TestSign_KnownVector(t *testing.T) {
	params := url.Values{}
	params.Set("version", "2.0")
	params.Set("timestamp", "1700000000")
	params.Set("pnm_order_identifier", "PNM-1")
	params.Set("site_order_identifier", "TEST123")

	got := Sign(params, "secret123")

	// Parameters sorted by name, key||value concatenated, secret appended,
	// MD5 lowercase hex.
	assert.Equal(t, "c4ed193e21be9b9e75d06265db569bd6", got)
}

func TestSign_ExcludesSignatureParam(t *testing.T) {
	params := url.Values{}
	params.Set("version", "2.0")
	params.Set("timestamp", "1700000000")

	without := Sign(params, "secret123")

	params.Set("signature", "anything")
	with := Sign(params, "secret123")

	assert.Equal(t, without, with, "signature param must not sign itself")
}

func TestSign_DifferentInputs(t *testing.T) {
	params1 := url.Values{"version": {"2.0"}, "timestamp": {"1700000000"}}
	params2 := url.Values{"version": {"2.0"}, "timestamp": {"1700000001"}}

	assert.NotEqual(t, Sign(params1, "s"), Sign(params2, "s"), "different params should produce different signatures")
	assert.NotEqual(t, Sign(params1, "s1"), Sign(params1, "s2"), "different secrets should produce different signatures")
}

func TestSigner_Verify(t *testing.T) {
	signer := NewSigner(staticSecret("secret123"))

	params := url.Values{}
	params.Set("version", "2.0")
	params.Set("timestamp", "1700000000")
	params.Set("pnm_order_identifier", "PNM-1")
	params.Set("site_order_identifier", "TEST123")
	params.Set("signature", Sign(params, "secret123"))

	req, err := domain.ParseCallbackRequest(params, false)
	require.NoError(t, err)

	valid, err := signer.Verify(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestSigner_Verify_Mismatch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(params url.Values)
	}{
		{
			name: "forged signature",
			mutate: func(params url.Values) {
				params.Set("signature", "deadbeefdeadbeefdeadbeefdeadbeef")
			},
		},
		{
			name: "tampered field",
			mutate: func(params url.Values) {
				params.Set("site_order_identifier", "ORD999")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer := NewSigner(staticSecret("secret123"))

			params := url.Values{}
			params.Set("version", "2.0")
			params.Set("timestamp", "1700000000")
			params.Set("site_order_identifier", "TEST123")
			params.Set("signature", Sign(params, "secret123"))
			tt.mutate(params)

			req, err := domain.ParseCallbackRequest(params, false)
			require.NoError(t, err)

			valid, err := signer.Verify(context.Background(), req)
			require.NoError(t, err)
			assert.False(t, valid)
		})
	}
}

func TestFreshnessChecker(t *testing.T) {
	now := time.Unix(1700000000, 0)
	checker := NewFreshnessChecker(5*time.Minute, time.Minute)

	tests := []struct {
		name      string
		timestamp int64
		want      bool
	}{
		{"current", now.Unix(), true},
		{"within max age", now.Add(-4 * time.Minute).Unix(), true},
		{"at max age", now.Add(-5 * time.Minute).Unix(), true},
		{"stale", now.Add(-5*time.Minute - time.Second).Unix(), false},
		{"very stale", now.Add(-24 * time.Hour).Unix(), false},
		{"slightly future", now.Add(30 * time.Second).Unix(), true},
		{"too far future", now.Add(2 * time.Minute).Unix(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checker.Fresh(tt.timestamp, now))
		})
	}
}
