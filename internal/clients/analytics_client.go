package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spacesedan/reviewlens/internal/models"
)

// AnalyticsClient reads the analytics endpoints of a running API.
type AnalyticsClient struct {
	Client  *http.Client
	baseURL string
}

func NewAnalyticsClient(baseURL string, timeout time.Duration) *AnalyticsClient {
	slog.Info("[AnalyticsClient] Initializing Client", slog.String("base_url", baseURL))

	return &AnalyticsClient{
		Client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (a *AnalyticsClient) Stats(ctx context.Context) (models.StatsResponse, error) {
	var stats models.StatsResponse
	err := a.getJSON(ctx, "/analytics/stats", &stats)
	return stats, err
}

func (a *AnalyticsClient) Ranking(ctx context.Context) (models.RankingResponse, error) {
	var ranking models.RankingResponse
	err := a.getJSON(ctx, "/analytics/ranking", &ranking)
	return ranking, err
}

func (a *AnalyticsClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := a.Client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status code %d", path, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		slog.Error("[AnalyticsClient] Failed to unmarshal response",
			slog.String("path", path),
			slog.String("error", err.Error()),
			getPreview(body))
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
