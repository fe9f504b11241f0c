package casefile

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v2"
)

// OpenSearchConfig holds connection settings for an OpenSearch-backed
// case source.
type OpenSearchConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Insecure bool   `mapstructure:"insecure"`
	Index    string `mapstructure:"index"`
	MaxCases int    `mapstructure:"max_cases"`
}

// OpenSearchSource loads case documents from an index instead of local
// files. It shares the loader's all-or-nothing contract: any transport
// or index error fails the run.
type OpenSearchSource struct {
	client *opensearch.Client
	index  string
	size   int
}

// NewOpenSearchSource connects and pings the cluster.
func NewOpenSearchSource(cfg OpenSearchConfig) (*OpenSearchSource, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.Insecure,
			},
		},
	}

	osCfg := opensearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: httpClient.Transport,
	}

	client, err := opensearch.NewClient(osCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	info, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to ping opensearch: %w", err)
	}
	defer info.Body.Close()

	if info.IsError() {
		return nil, fmt.Errorf("opensearch returned error: %s", info.Status())
	}

	size := cfg.MaxCases
	if size <= 0 {
		size = 10000
	}

	return &OpenSearchSource{
		client: client,
		index:  cfg.Index,
		size:   size,
	}, nil
}

// Load fetches up to the configured number of case documents from the
// index, oldest first so multi-period extracts see cases in order.
func (s *OpenSearchSource) Load(ctx context.Context) ([]CaseRecord, error) {
	searchBody := map[string]any{
		"query": map[string]any{"match_all": map[string]any{}},
		"size":  s.size,
		"sort": []map[string]any{
			{"ticket_id": map[string]string{"order": "asc"}},
		},
	}

	bodyBytes, err := json.Marshal(searchBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search body: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(bodyBytes)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search case index %s: %w", s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("opensearch error: %s - %s", res.Status(), string(body))
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	cases := make([]CaseRecord, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		dec := json.NewDecoder(bytes.NewReader(hit.Source))
		dec.UseNumber()

		var doc map[string]any
		if err := dec.Decode(&doc); err != nil {
			// A hit that is not an object carries no case data.
			continue
		}
		cases = append(cases, FromMap(doc))
	}
	return cases, nil
}
