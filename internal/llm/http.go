package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxProviderBody caps how much of a provider response is read.
const maxProviderBody = 8 << 20

// postJSON sends in as JSON and returns the body with the status code.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, in any) ([]byte, int, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, 0, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	return raw, resp.StatusCode, nil
}
