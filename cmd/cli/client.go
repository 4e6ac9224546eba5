package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iho/optiledger/internal/adapter/http/dto"
)

// apiError is a non-2xx response from the ledger API.
type apiError struct {
	Status int
	Body   dto.ErrorResponse
	Raw    string
}

func (e *apiError) Error() string {
	if e.Body.Error != "" {
		if e.Body.Message != "" {
			return fmt.Sprintf("%d %s: %s", e.Status, e.Body.Error, e.Body.Message)
		}
		return fmt.Sprintf("%d %s", e.Status, e.Body.Error)
	}
	return fmt.Sprintf("%d %s", e.Status, strings.TrimSpace(e.Raw))
}

type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// do sends body as JSON and decodes a 2xx response into out. For other
// statuses the decoded body is still written to out when possible and an
// *apiError is returned.
func (c *apiClient) do(ctx context.Context, method, path string, headers map[string]string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &apiError{Status: resp.StatusCode, Raw: string(raw)}
		_ = json.Unmarshal(raw, &apiErr.Body)
		if out != nil {
			_ = json.Unmarshal(raw, out)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
