package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeGeocoder(t *testing.T, status string, addresses ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "textquery", r.URL.Query().Get("inputtype"))
		candidates := make([]map[string]string, 0, len(addresses))
		for _, a := range addresses {
			candidates = append(candidates, map[string]string{"formatted_address": a})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     status,
			"candidates": candidates,
		})
	}))
}

func TestValidateZeroCandidates(t *testing.T) {
	srv := fakeGeocoder(t, "ZERO_RESULTS")
	defer srv.Close()

	v := NewValidator("key").WithBaseURL(srv.URL)
	res, err := v.Validate(context.Background(), "nowhere street 0")

	require.NoError(t, err)
	assert.Equal(t, "", res.FormattedAddress)
	assert.False(t, res.MultipleCandidates)
	assert.Empty(t, res.AddressCandidates)
}

func TestValidateSingleCandidate(t *testing.T) {
	srv := fakeGeocoder(t, "OK", "Calle Mayor 1, 28013 Madrid, Spain")
	defer srv.Close()

	v := NewValidator("key").WithBaseURL(srv.URL)
	res, err := v.Validate(context.Background(), "calle mayor 1 madrid")

	require.NoError(t, err)
	assert.Equal(t, "Calle Mayor 1, 28013 Madrid, Spain", res.FormattedAddress)
	assert.False(t, res.MultipleCandidates)
}

func TestValidateMultipleCandidates(t *testing.T) {
	srv := fakeGeocoder(t, "OK", "Main St 1, Springfield, IL", "Main St 1, Springfield, MA")
	defer srv.Close()

	v := NewValidator("key").WithBaseURL(srv.URL)
	res, err := v.Validate(context.Background(), "main st 1 springfield")

	require.NoError(t, err)
	assert.True(t, res.MultipleCandidates)
	assert.Equal(t, "", res.FormattedAddress)
	assert.Equal(t, []string{"Main St 1, Springfield, IL", "Main St 1, Springfield, MA"}, res.AddressCandidates)
}

func TestValidateRequestDenied(t *testing.T) {
	srv := fakeGeocoder(t, "REQUEST_DENIED")
	defer srv.Close()

	v := NewValidator("bad-key").WithBaseURL(srv.URL)
	_, err := v.Validate(context.Background(), "anywhere")

	assert.ErrorIs(t, err, ErrRequestDenied)
}

func TestValidateTransportFailureReturnsEmptyShape(t *testing.T) {
	srv := fakeGeocoder(t, "OK", "x")
	srv.Close() // connection refused

	v := NewValidator("key").WithBaseURL(srv.URL)
	res, err := v.Validate(context.Background(), "anywhere")

	require.NoError(t, err)
	assert.Equal(t, "", res.FormattedAddress)
	assert.Empty(t, res.AddressCandidates)
}
