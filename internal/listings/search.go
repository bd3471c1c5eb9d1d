package listings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
)

// SearchIndex is the secondary full-text/geo index over published
// listings. The Postgres rows stay authoritative; the index is rebuilt by
// the maintenance worker and patched on every mutation.
type SearchIndex interface {
	Index(ctx context.Context, listing *Listing) error
	Remove(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, limit int) ([]uuid.UUID, error)
}

type esIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewSearchIndex(client *elasticsearch.Client, index string) SearchIndex {
	return &esIndex{client: client, index: index}
}

type listingDoc struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Status      string  `json:"status"`
	Location    struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"location"`
}

func (s *esIndex) Index(ctx context.Context, listing *Listing) error {
	doc := listingDoc{
		Title:       listing.Title,
		Description: listing.Description,
		Price:       listing.Price,
		Status:      listing.Status,
	}
	doc.Location.Lat = listing.Lat
	doc.Location.Lon = listing.Lng

	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	res, err := s.client.Index(s.index, bytes.NewReader(body),
		s.client.Index.WithDocumentID(listing.ID.String()),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("indexing listing %s: %w", listing.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("indexing listing %s: %s", listing.ID, res.String())
	}
	return nil
}

func (s *esIndex) Remove(ctx context.Context, id uuid.UUID) error {
	res, err := s.client.Delete(s.index, id.String(), s.client.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	// Removing an unindexed listing is fine.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("removing listing %s from index: %s", id, res.String())
	}
	return nil
}

func (s *esIndex) Search(ctx context.Context, query string, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 20
	}
	q := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  query,
						"fields": []string{"title^2", "description"},
					},
				},
				"filter": map[string]interface{}{
					"match": map[string]interface{}{"status": StatusPublished},
				},
			},
		},
	}
	body, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("searching listings: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("searching listings: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
