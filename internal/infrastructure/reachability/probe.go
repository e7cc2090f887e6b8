package reachability

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Probe checks outbound network reachability against a known endpoint. The
// payment, mail and model providers are all remote APIs, so a failing egress
// path degrades everything at once; this probe makes that visible directly.
type Probe struct {
	url        string
	httpClient *http.Client
}

func New(url string) *Probe {
	return &Probe{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *Probe) Name() string { return "network" }

func (p *Probe) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("create reachability request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reachability check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("reachability status: %s", resp.Status)
	}
	return nil
}
