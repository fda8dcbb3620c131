package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for event documents.
//
// The mapping is designed with these priorities:
//  1. Fast full-text search on event names with English stemming
//  2. Venue and organizer matches at lower relevance
//  3. Exact keyword matching for genre and city filters
//  4. Numeric range queries for price and date
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Name - primary search target
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Venue - searchable with simple analyzer, no stemming of venue names
	venueFieldMapping := bleve.NewTextFieldMapping()
	venueFieldMapping.Analyzer = simple.Name
	venueFieldMapping.Store = true
	venueFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("venue", venueFieldMapping)

	// Organizer - searchable, promoter names stay unstemmed
	organizerFieldMapping := bleve.NewTextFieldMapping()
	organizerFieldMapping.Analyzer = simple.Name
	organizerFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("organizer", organizerFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Genres - exact matching keeps multi-word genres intact
	genresFieldMapping := bleve.NewTextFieldMapping()
	genresFieldMapping.Analyzer = keyword.Name
	genresFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("genres", genresFieldMapping)

	// City - derived from the venue string at index time
	cityFieldMapping := bleve.NewTextFieldMapping()
	cityFieldMapping.Analyzer = keyword.Name
	cityFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("city", cityFieldMapping)

	// --- Numeric fields (range queries, sorting) ---

	priceFieldMapping := bleve.NewNumericFieldMapping()
	priceFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("price", priceFieldMapping)

	dateFieldMapping := bleve.NewNumericFieldMapping()
	dateFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("date", dateFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
