// Package ingest is the client side of the result submission contract:
// satellite test servers use it to deliver a finished test to the central
// store over one bounded HTTP call.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// defaultTimeout bounds a delivery attempt. A result that cannot be
// delivered in this window is abandoned and logged by the caller; the test
// runner must never hang on the central server.
const defaultTimeout = 5 * time.Second

// Client posts finished test results to the central server. Delivery is
// best-effort: errors are returned for logging, never retried.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// SubmitResult delivers one finished test. test and patientName override any
// test_name/patient_name already present in fields.
func (c *Client) SubmitResult(ctx context.Context, test, patientName string, fields map[string]any) error {
	payload := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		payload[k] = v
	}
	payload["test_name"] = test
	payload["patient_name"] = patientName

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/save_test_result", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("posting result: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("central server answered %s", resp.Status)
	}
	return nil
}
