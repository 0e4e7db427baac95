package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	defaultVoyageModel    = "voyage-3.5"
	defaultVoyageEndpoint = "https://api.voyageai.com/v1/embeddings"
)

// VoyageEmbedder calls the Voyage AI embeddings API, the provider Anthropic
// points to for Claude deployments. Requires VOYAGE_API_KEY; VOYAGE_API_BASE
// overrides the endpoint.
type VoyageEmbedder struct {
	client    *http.Client
	apiKey    string
	model     string
	endpoint  string
	inputType string
}

func NewVoyageEmbedder(model string) (*VoyageEmbedder, error) {
	key := os.Getenv("VOYAGE_API_KEY")
	if key == "" {
		return nil, errors.New("VOYAGE_API_KEY is not set")
	}
	if model == "" {
		model = defaultVoyageModel
	}
	endpoint := os.Getenv("VOYAGE_API_BASE")
	if endpoint == "" {
		endpoint = defaultVoyageEndpoint
	}
	return &VoyageEmbedder{
		client:    &http.Client{Timeout: 60 * time.Second},
		apiKey:    key,
		model:     model,
		endpoint:  endpoint,
		inputType: "document",
	}, nil
}

type voyageRequest struct {
	Input     []string `json:"input"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type voyageResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (v *VoyageEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(voyageRequest{Input: []string{text}, Model: v.model, InputType: v.inputType})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.apiKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voyage embed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("voyage embed: HTTP %d: %s", resp.StatusCode, msg)
	}
	var out voyageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("voyage embed: decode: %w", err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, ErrNotSupported
	}
	vec := make([]float32, len(out.Data[0].Embedding))
	for i, x := range out.Data[0].Embedding {
		vec[i] = float32(x)
	}
	return vec, nil
}
