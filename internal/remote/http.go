package remote

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// HTTPStore posts one serialized record per insert to a backend
// endpoint. The request deadline comes from the caller's context; the
// client itself carries no timeout so flush and cycle bounds stay in one
// place.
type HTTPStore struct {
	endpoint string
	client   *http.Client
	token    string
}

// NewHTTPStore builds the client. tokenEnv names the environment
// variable holding the bearer token; empty disables auth.
func NewHTTPStore(endpoint, tokenEnv string, insecureSkipVerify bool) *HTTPStore {
	client := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: insecureSkipVerify},
		},
	}

	token := ""
	if tokenEnv != "" {
		token = os.Getenv(tokenEnv)
	}

	return &HTTPStore{
		endpoint: endpoint,
		client:   client,
		token:    token,
	}
}

func (s *HTTPStore) Name() string { return "http" }

func (s *HTTPStore) Insert(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Correlation-ID", uuid.New().String())
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Msg("record post rejected")
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}
	return nil
}
