package oracle

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"
)

const maxResponseBytes = 64 * 1024

// Gateway submits ciphertext handles to the decryption oracle over HTTP.
// The oracle answers asynchronously through the callback endpoint; Request
// only obtains the request id that ties the callback to its pending context.
type Gateway struct {
	baseURL     string
	callbackURL string
	httpDo      func(*http.Request) (*http.Response, error)
}

func NewGateway(baseURL, callbackURL string, timeout time.Duration, httpClient *http.Client) (*Gateway, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("oracle base url is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Gateway{
		baseURL:     strings.TrimRight(baseURL, "/"),
		callbackURL: callbackURL,
		httpDo:      httpClient.Do,
	}, nil
}

type decryptRequest struct {
	Handles     []string `json:"handles"`
	CallbackURL string   `json:"callback_url,omitempty"`
}

type decryptResponse struct {
	RequestID string `json:"request_id"`
}

func (g *Gateway) Request(ctx context.Context, handles []domain.Handle) (string, error) {
	if len(handles) == 0 {
		return "", errors.New("at least one handle is required")
	}
	encoded := make([]string, 0, len(handles))
	for _, h := range handles {
		if !h.Initialized() {
			return "", domain.ErrHandleNotInitialized
		}
		encoded = append(encoded, hex.EncodeToString(h))
	}

	body, err := json.Marshal(decryptRequest{Handles: encoded, CallbackURL: g.callbackURL})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/decrypt", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpDo(req)
	if err != nil {
		return "", fmt.Errorf("oracle request failed: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("oracle response read failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}

	var decoded decryptResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("oracle response decode failed: %w", err)
	}
	if decoded.RequestID == "" {
		return "", errors.New("oracle response missing request_id")
	}
	return decoded.RequestID, nil
}
