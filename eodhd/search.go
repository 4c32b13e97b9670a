package eodhd

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// SearchResult matches the structure of a single item in the EODHD search API response.
type SearchResult struct {
	Code              string  `json:"Code"`
	Exchange          string  `json:"Exchange"`
	Name              string  `json:"Name"`
	Type              string  `json:"Type"`
	Country           string  `json:"Country"`
	Currency          string  `json:"Currency"`
	ISIN              string  `json:"ISIN"`
	PreviousClose     float64 `json:"previousClose"`
	PreviousCloseDate string  `json:"previousCloseDate"`
}

// Symbol returns the symbol Price expects for this result.
func (r SearchResult) Symbol() string { return r.Code + "." + r.Exchange }

// Search looks up securities by name, ticker or ISIN.
func (c *Client) Search(ctx context.Context, term string) ([]SearchResult, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("empty search term")
	}
	addr := fmt.Sprintf("%s/search/%s?fmt=json&api_token=%s", c.baseURL, url.PathEscape(term), url.QueryEscape(c.apiKey))

	var results []SearchResult
	if err := jwget(ctx, c.http, addr, &results); err != nil {
		return nil, err
	}
	return results, nil
}
