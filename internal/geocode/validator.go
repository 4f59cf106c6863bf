// Package geocode wraps the maps find-place endpoint for delivery-address
// validation.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"
)

// ErrRequestDenied surfaces a provider-level rejection (bad or missing API
// key). Every other failure degrades to the empty/invalid result shape so
// callers always get a well-formed object.
var ErrRequestDenied = errors.New("GEOCODING_REQUEST_DENIED")

// Result is the normalized validation outcome. An empty FormattedAddress is
// treated as INVALID by callers.
type Result struct {
	FormattedAddress   string   `json:"formattedAddress"`
	MultipleCandidates bool     `json:"multipleCandidates"`
	AddressCandidates  []string `json:"addressCandidates"`
}

type Validator struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewValidator(apiKey string) *Validator {
	return &Validator{
		apiKey:  apiKey,
		baseURL: "https://maps.googleapis.com/maps/api/place/findplacefromtext/json",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL overrides the endpoint; tests point it at a local server.
func (v *Validator) WithBaseURL(u string) *Validator {
	v.baseURL = u
	return v
}

// Validate resolves free-text input into zero, one or multiple address
// candidates.
func (v *Validator) Validate(ctx context.Context, address string) (*Result, error) {
	empty := &Result{AddressCandidates: []string{}}

	q := url.Values{}
	q.Set("input", address)
	q.Set("inputtype", "textquery")
	q.Set("fields", "formatted_address")
	q.Set("key", v.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return empty, nil
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return empty, nil
	}
	defer resp.Body.Close()

	var payload struct {
		Status     string `json:"status"`
		Candidates []struct {
			FormattedAddress string `json:"formatted_address"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return empty, nil
	}

	if payload.Status == "REQUEST_DENIED" {
		return nil, ErrRequestDenied
	}

	candidates := make([]string, 0, len(payload.Candidates))
	for _, c := range payload.Candidates {
		if c.FormattedAddress != "" {
			candidates = append(candidates, c.FormattedAddress)
		}
	}

	switch len(candidates) {
	case 0:
		return empty, nil
	case 1:
		return &Result{
			FormattedAddress:  candidates[0],
			AddressCandidates: candidates,
		}, nil
	default:
		return &Result{
			MultipleCandidates: true,
			AddressCandidates:  candidates,
		}, nil
	}
}
