package tools

import "context"

// AssociationItem is one search hit suggesting a possible association.
type AssociationItem struct {
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
}

// AssociationResult lists associations found for a name.
type AssociationResult struct {
	Items []AssociationItem `json:"items"`
	Notes string            `json:"notes"`
}

var negativePatterns = []string{"scandal", "controversy", "notorious"}

// ScanNegativeAssociations probes the web for reasons a name might carry
// baggage. Purely advisory input to the researcher prompt.
func ScanNegativeAssociations(ctx context.Context, name string) AssociationResult {
	var items []AssociationItem
	for _, pattern := range negativePatterns {
		for _, r := range SearchWeb(ctx, name+" "+pattern, 3) {
			items = append(items, AssociationItem{Label: r.Title, URL: r.URL})
		}
	}
	if len(items) == 0 {
		return AssociationResult{Items: items, Notes: "No concerning associations surfaced in stub search."}
	}
	return AssociationResult{
		Items: items,
		Notes: "Review items manually to confirm relevance; automated search may include tangential matches.",
	}
}
