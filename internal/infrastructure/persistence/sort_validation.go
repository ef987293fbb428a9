package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC. Anything else means DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "ASC") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// PartySortFields contains allowed sort fields for parties
var PartySortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"gstin":      true,
}

// DocumentSortFields contains allowed sort fields for documents
var DocumentSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"number":         true,
	"document_date":  true,
	"due_date":       true,
	"grand_total":    true,
	"balance_amount": true,
	"status":         true,
}
