package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for reader documents.
//
// username is indexed whole for prefix matching; username_text splits it on
// underscores and digits so "night_owl" matches "owl".
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()

	idField := bleve.NewTextFieldMapping()
	idField.Analyzer = keyword.Name
	idField.Store = true
	docMapping.AddFieldMappingsAt("id", idField)

	usernameField := bleve.NewTextFieldMapping()
	usernameField.Analyzer = keyword.Name
	usernameField.Store = true
	docMapping.AddFieldMappingsAt("username", usernameField)

	usernameTextField := bleve.NewTextFieldMapping()
	usernameTextField.Analyzer = simple.Name
	docMapping.AddFieldMappingsAt("username_text", usernameTextField)

	displayNameField := bleve.NewTextFieldMapping()
	displayNameField.Analyzer = simple.Name
	displayNameField.Store = true
	displayNameField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("display_name", displayNameField)

	// Bios are stemmed and not stored.
	bioField := bleve.NewTextFieldMapping()
	bioField.Analyzer = en.AnalyzerName
	bioField.Store = false
	docMapping.AddFieldMappingsAt("bio", bioField)

	createdAtField := bleve.NewNumericFieldMapping()
	createdAtField.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtField)

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}
