package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spacesedan/reviewlens/internal/models"
)

// HuggingFaceClient calls a hosted text-classification model. It makes
// exactly one request per call; retry decisions belong to the caller.
type HuggingFaceClient struct {
	Client   *http.Client
	endpoint string
	token    string
}

func NewHuggingFaceClient(endpoint, token string, timeout time.Duration) *HuggingFaceClient {
	slog.Info("[HuggingFaceClient] Initializing Client",
		slog.String("endpoint", endpoint),
		slog.Duration("timeout", timeout))

	return &HuggingFaceClient{
		Client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		token:    token,
	}
}

// Classify returns the label/score pairs for text, highest score first.
func (h *HuggingFaceClient) Classify(ctx context.Context, text string) ([]models.HFClassification, error) {
	start := time.Now()

	input := models.HFInferenceRequest{
		Inputs:  text,
		Options: models.HFInferenceOptions{WaitForModel: true},
	}

	respBody, err := h.postJSON(ctx, input)
	if err != nil {
		slog.Error("[HuggingFaceClient] Classification request failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return nil, err
	}

	result, err := decodeClassifications(respBody)
	if err != nil {
		slog.Error("[HuggingFaceClient] Failed to unmarshal response",
			slog.String("endpoint", h.endpoint),
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(respBody)))
		return nil, err
	}

	slog.Debug("[HuggingFaceClient] Classification request successful",
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (h *HuggingFaceClient) postJSON(ctx context.Context, input interface{}) ([]byte, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("inference endpoint returned %s", errMsg(resp.StatusCode, respBody))
	}

	return respBody, nil
}

// decodeClassifications accepts both the nested [[...]] shape and a flat [...] list.
func decodeClassifications(body []byte) ([]models.HFClassification, error) {
	var nested [][]models.HFClassification
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 {
			return nil, nil
		}
		return nested[0], nil
	}

	var flat []models.HFClassification
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return flat, nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(status int, body []byte) string {
	var apiErr models.HFErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		return fmt.Sprintf("status code %d: %s", status, apiErr.Error)
	}
	return fmt.Sprintf("status code %d", status)
}
