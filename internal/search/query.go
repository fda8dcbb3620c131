package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string // User's search text

	// Filters
	Genres   []string // Filter by exact genre names
	Cities   []string // Filter by exact city names
	MinPrice int64    // Minimum ticket price in dollars
	MaxPrice int64    // Maximum ticket price in dollars (0 = unbounded)

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "name", "price", "date"
	SortOrder string // "asc", "desc"

	// Options
	Highlight bool // Include match highlighting
}

// DefaultSearchParams returns sensible defaults for typeahead.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:     20,
		Offset:    0,
		SortBy:    "relevance",
		SortOrder: "desc",
		Highlight: true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit represents a single matching event.
type SearchHit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Venue      string            `json:"venue"`
	Organizer  string            `json:"organizer,omitempty"`
	City       string            `json:"city,omitempty"`
	Price      int64             `json:"price"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
		searchRequest.Highlight.AddField("venue")
		searchRequest.Highlight.AddField("organizer")
	}

	searchRequest.Fields = []string{
		"id", "name", "venue", "organizer", "city", "price",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if v, ok := hit.Fields["venue"].(string); ok {
			searchHit.Venue = v
		}
		if o, ok := hit.Fields["organizer"].(string); ok {
			searchHit.Organizer = o
		}
		if c, ok := hit.Fields["city"].(string); ok {
			searchHit.City = c
		}
		if p, ok := hit.Fields["price"].(float64); ok {
			searchHit.Price = int64(p)
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	// Main text query: event names score highest, venue and organizer
	// matches rank below them. Fuzzy and prefix variants on the name
	// keep typeahead forgiving of typos and partial words.
	if params.Query != "" {
		textQueries := []query.Query{}

		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		venueMatch := bleve.NewMatchQuery(params.Query)
		venueMatch.SetField("venue")
		venueMatch.SetBoost(1.5)
		textQueries = append(textQueries, venueMatch)

		organizerMatch := bleve.NewMatchQuery(params.Query)
		organizerMatch.SetField("organizer")
		organizerMatch.SetBoost(1.2)
		textQueries = append(textQueries, organizerMatch)

		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("name")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Genre filter (exact match, OR across genres)
	if len(params.Genres) > 0 {
		genreQueries := make([]query.Query, len(params.Genres))
		for i, g := range params.Genres {
			gq := bleve.NewTermQuery(g)
			gq.SetField("genres")
			genreQueries[i] = gq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(genreQueries...))
	}

	// City filter (exact match, OR across cities)
	if len(params.Cities) > 0 {
		cityQueries := make([]query.Query, len(params.Cities))
		for i, c := range params.Cities {
			cq := bleve.NewTermQuery(c)
			cq.SetField("city")
			cityQueries[i] = cq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(cityQueries...))
	}

	// Price range filter
	if params.MinPrice > 0 || params.MaxPrice > 0 {
		min := float64(params.MinPrice)
		max := float64(params.MaxPrice)
		if params.MaxPrice == 0 {
			max = math.MaxFloat64
		}
		rangeQuery := bleve.NewNumericRangeQuery(&min, &max)
		rangeQuery.SetField("price")
		queries = append(queries, rangeQuery)
	}

	// Combine all queries with AND
	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case "name":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-name"})
		} else {
			req.SortBy([]string{"name"})
		}
	case "price":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-price"})
		} else {
			req.SortBy([]string{"price"})
		}
	case "date":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-date"})
		} else {
			req.SortBy([]string{"date"})
		}
	default:
		// Relevance (score) is default
		req.SortBy([]string{"-_score"})
	}
}
