package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultQdrantCollection is the Qdrant collection holding every research
// collection's chunks; the research collection is a payload field.
const DefaultQdrantCollection = "research_chunks"

// qdrantNamespace derives stable point UUIDs from collection/chunk IDs.
var qdrantNamespace = uuid.MustParse("6f1d1c8e-4c55-4c3e-9a9b-1b7a3f0e2d41")

// QdrantStore talks to Qdrant over its REST API.
type QdrantStore struct {
	baseURL    string
	apiKey     string
	collection string
	client     *http.Client
}

func NewQdrantStore(baseURL, collection, apiKey string) *QdrantStore {
	if baseURL == "" {
		baseURL = "http://localhost:6333"
	}
	if collection == "" {
		collection = DefaultQdrantCollection
	}
	return &QdrantStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		collection: collection,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

type qdrantStatus struct {
	State string
	Error string
}

// UnmarshalJSON accepts both `"ok"` and `{"error":"..."}`.
func (s *qdrantStatus) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		s.State = strings.ToLower(v)
		return nil
	}
	var obj struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	if obj.Error != "" {
		s.State, s.Error = "error", obj.Error
	}
	return nil
}

type qdrantEnvelope[T any] struct {
	Status qdrantStatus `json:"status"`
	Result T            `json:"result"`
}

type qdrantPayload struct {
	ChunkID    string `json:"chunk_id"`
	Collection string `json:"collection"`
	Source     string `json:"source"`
	Page       string `json:"page,omitempty"`
	Text       string `json:"text"`
}

type qdrantPoint struct {
	ID      string        `json:"id"`
	Vector  []float32     `json:"vector"`
	Payload qdrantPayload `json:"payload"`
}

type qdrantScored struct {
	Score   float64       `json:"score"`
	Payload qdrantPayload `json:"payload"`
}

func collectionFilter(collection string) map[string]any {
	return map[string]any{
		"must": []map[string]any{{
			"key":   "collection",
			"match": map[string]any{"value": collection},
		}},
	}
}

// CreateSchema creates the Qdrant collection with cosine distance and a
// keyword index on the collection field. Existing collections are kept.
func (qs *QdrantStore) CreateSchema(ctx context.Context, dims int) error {
	if dims <= 0 {
		return fmt.Errorf("qdrant: invalid embedding dimension %d", dims)
	}
	body := map[string]any{"vectors": map[string]any{"size": dims, "distance": "Cosine"}}
	err := qs.do(ctx, http.MethodPut, qs.path(""), body, nil)
	if err != nil && !strings.Contains(strings.ToLower(err.Error()), "already exists") {
		return err
	}
	index := map[string]any{"field_name": "collection", "field_schema": "keyword"}
	return qs.do(ctx, http.MethodPut, qs.path("/index"), index, nil)
}

func (qs *QdrantStore) Upsert(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	points := make([]qdrantPoint, len(chunks))
	for i, c := range chunks {
		points[i] = qdrantPoint{
			ID:     uuid.NewSHA1(qdrantNamespace, []byte(c.Collection+"/"+c.ID)).String(),
			Vector: c.Embedding,
			Payload: qdrantPayload{
				ChunkID:    c.ID,
				Collection: c.Collection,
				Source:     c.Source,
				Page:       c.Page,
				Text:       c.Text,
			},
		}
	}
	return qs.do(ctx, http.MethodPut, qs.path("/points?wait=true"), map[string]any{"points": points}, nil)
}

func (qs *QdrantStore) Search(ctx context.Context, collection string, embedding []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       embedding,
		"limit":        k,
		"with_payload": true,
		"filter":       collectionFilter(collection),
	}
	var resp qdrantEnvelope[[]qdrantScored]
	if err := qs.do(ctx, http.MethodPost, qs.path("/points/search"), req, &resp); err != nil {
		return nil, err
	}
	out := make([]Match, 0, len(resp.Result))
	for _, p := range resp.Result {
		out = append(out, Match{
			Chunk: Chunk{
				ID:         p.Payload.ChunkID,
				Collection: p.Payload.Collection,
				Source:     p.Payload.Source,
				Page:       p.Payload.Page,
				Text:       p.Payload.Text,
			},
			Score: p.Score,
		})
	}
	return out, nil
}

func (qs *QdrantStore) Count(ctx context.Context, collection string) (int, error) {
	req := map[string]any{"exact": true, "filter": collectionFilter(collection)}
	var resp qdrantEnvelope[struct {
		Count int `json:"count"`
	}]
	if err := qs.do(ctx, http.MethodPost, qs.path("/points/count"), req, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

func (qs *QdrantStore) Close(context.Context) error {
	qs.client.CloseIdleConnections()
	return nil
}

func (qs *QdrantStore) path(suffix string) string {
	return "/collections/" + url.PathEscape(qs.collection) + suffix
}

func (qs *QdrantStore) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, qs.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if qs.apiKey != "" {
		req.Header.Set("api-key", qs.apiKey)
	}
	resp, err := qs.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if resp.StatusCode >= 400 {
		var env qdrantEnvelope[json.RawMessage]
		if json.Unmarshal(payload, &env) == nil && env.Status.Error != "" {
			return errors.New("qdrant: " + env.Status.Error)
		}
		return fmt.Errorf("qdrant %s %s: http %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if out != nil && len(payload) > 0 {
		return json.Unmarshal(payload, out)
	}
	return nil
}
