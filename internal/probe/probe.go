package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/kubenetlabs/pipeline-demo/pkg/version"
)

// DefaultURL is the health endpoint of a server running with default settings.
const DefaultURL = "http://127.0.0.1:5000/health"

// ErrUnhealthy is wrapped by every failure where the server answered but the
// answer was not a healthy status.
var ErrUnhealthy = errors.New("unhealthy")

// maxBody caps how much of a health response is read.
const maxBody = 64 << 10

type healthBody struct {
	Status string `json:"status"`
}

// Check performs GET url and succeeds only on a 200 whose JSON body has
// status "ok". The request is bounded by ctx.
func Check(ctx context.Context, client *http.Client, url string) error {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "pipeline-demo-probe/"+version.Version)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}

	var body healthBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&body); err != nil {
		return fmt.Errorf("%w: decoding body: %v", ErrUnhealthy, err)
	}
	if body.Status != "ok" {
		return fmt.Errorf("%w: status field %q", ErrUnhealthy, body.Status)
	}
	return nil
}
