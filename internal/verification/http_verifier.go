package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// HTTPVerifier calls an external document verification REST endpoint
type HTTPVerifier struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewHTTPVerifier creates a verifier posting to endpoint
func NewHTTPVerifier(endpoint, apiKey string, timeout time.Duration, logger *logrus.Logger) *HTTPVerifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &HTTPVerifier{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type verifyResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	ExtractedFields
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

// Verify posts the request; non-2xx and transport failures are returned as errors
func (v *HTTPVerifier) Verify(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if v.apiKey != "" {
		httpReq.Header.Set("X-API-Key", v.apiKey)
	}

	resp, err := v.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("verification provider returned status %d", resp.StatusCode)
	}

	var decoded verifyResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	raw := map[string]interface{}{}
	_ = json.Unmarshal(payload, &raw)

	if !decoded.Success {
		return &Result{Success: false, Error: decoded.Error, Raw: raw}, nil
	}

	fields := decoded.ExtractedFields
	if decoded.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", decoded.DateOfBirth)
		if err != nil {
			v.logger.WithError(err).WithField("date_of_birth", decoded.DateOfBirth).Warn("Ignoring unparseable date of birth")
		} else {
			fields.DateOfBirth = &dob
		}
	}

	return &Result{Success: true, Fields: &fields, Raw: raw}, nil
}
