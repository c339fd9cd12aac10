// Package output serializes ingestion results.
package output

import (
	"encoding/json"

	"github.com/sheetmind/sheetmind-go/pkg/sheetmind/models"
)

// TableToJSON serializes a table.
func TableToJSON(t *models.Table, pretty bool) ([]byte, error) {
	return marshal(t, pretty)
}

// CrossReferencesToJSON serializes detected cross-document references.
func CrossReferencesToJSON(refs []models.CrossReference, pretty bool) ([]byte, error) {
	return marshal(refs, pretty)
}

func marshal(v interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
