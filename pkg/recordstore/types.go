package recordstore

import "recruitdesk/internal/models"

// PageRequest selects one page of a (project, table) pair
type PageRequest struct {
	Project  string
	Table    string
	Page     int
	PageSize int
	Query    string
	Sort     string
}

// Page is one decoded upstream response.
// TotalKnown is false when the response carried no recognizable total-count field.
type Page struct {
	Records    []models.RawRecord
	Total      int
	TotalKnown bool
}

// recordKeys are the response fields that may carry the records array, in probe order
var recordKeys = []string{"records", "list", "data", "rows", "items", "results"}

// totalKeys are the response fields that may carry the total count, in probe order
var totalKeys = []string{"total", "totalCount", "total_count", "totalRows", "total_rows", "count", "found"}
