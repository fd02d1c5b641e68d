package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticsearchConfig holds configuration for the Elasticsearch recorder
type ElasticsearchConfig struct {
	URL         string
	Username    string
	Password    string
	IndexPrefix string
}

// ElasticsearchRecorder implements Recorder by indexing one document per
// settled round into a monthly index.
type ElasticsearchRecorder struct {
	client      *elasticsearch.Client
	indexPrefix string
}

// NewElasticsearchRecorder creates a new Elasticsearch recorder
func NewElasticsearchRecorder(config *ElasticsearchConfig) (*ElasticsearchRecorder, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{config.URL},
	}
	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating Elasticsearch client: %w", err)
	}

	prefix := config.IndexPrefix
	if prefix == "" {
		prefix = "felttable"
	}

	return &ElasticsearchRecorder{
		client:      client,
		indexPrefix: prefix,
	}, nil
}

// RecordRound indexes a settled round
func (r *ElasticsearchRecorder) RecordRound(ctx context.Context, rec *RoundRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("error encoding round record: %w", err)
	}

	docID := fmt.Sprintf("%s-%s", rec.TableID, rec.CompletedAt.Format(time.RFC3339Nano))
	req := esapi.IndexRequest{
		Index:      r.indexName(rec.CompletedAt),
		DocumentID: docID,
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("error indexing round record: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error response indexing round record: %s", res.String())
	}
	return nil
}

// indexName returns the monthly index for a completion time
func (r *ElasticsearchRecorder) indexName(at time.Time) string {
	return fmt.Sprintf("%s-rounds-%s", r.indexPrefix, at.Format("2006.01"))
}

// Close is a no-op; the underlying transport has no close hook
func (r *ElasticsearchRecorder) Close() error {
	return nil
}
