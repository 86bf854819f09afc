// Package search mirrors the product catalog into an Elasticsearch
// index for the storefront suggestion endpoint. The catalog's own
// ?search= filter stays in the database; this index only serves
// GET /api/search.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/craftroni/shop/internal/models"
)

const DefaultIndex = "products"

type Index struct {
	ES   *elasticsearch.Client
	Name string
}

func NewIndex(client *elasticsearch.Client, name string) *Index {
	if client == nil {
		return nil
	}
	if name == "" {
		name = DefaultIndex
	}
	return &Index{ES: client, Name: name}
}

func (i *Index) Enabled() bool {
	return i != nil && i.ES != nil
}

type doc struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	SalePrice   *float64 `json:"sale_price"`
}

func (i *Index) IndexProduct(ctx context.Context, p models.Product) error {
	if !i.Enabled() {
		return nil
	}
	body, err := json.Marshal(doc{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		SalePrice:   p.SalePrice,
	})
	if err != nil {
		return err
	}
	res, err := i.ES.Index(
		i.Name,
		bytes.NewReader(body),
		i.ES.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
		i.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index product %d: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index product %d: %s", p.ID, res.Status())
	}
	return nil
}

func (i *Index) DeleteProduct(ctx context.Context, id uint) error {
	if !i.Enabled() {
		return nil
	}
	res, err := i.ES.Delete(
		i.Name,
		strconv.FormatUint(uint64(id), 10),
		i.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	defer res.Body.Close()
	// 404 just means the document was never indexed.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete product %d: %s", id, res.Status())
	}
	return nil
}

// Search runs a prefix-phrase match over name and description. No
// fuzziness: the shop promises plain substring-style matching.
func (i *Index) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{
						"match_phrase_prefix": map[string]interface{}{"name": query},
					},
					map[string]interface{}{
						"match_phrase_prefix": map[string]interface{}{"description": query},
					},
				},
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Name),
		i.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	products := make([]models.Product, len(r.Hits.Hits))
	for idx, hit := range r.Hits.Hits {
		products[idx] = hit.Source
	}
	return r.Hits.Total.Value, products, nil
}
