package schema

// Severity and recommendation values for flagged names.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"

	RecommendRemove          = "remove"
	RecommendKeepWithWarning = "keep_with_warning"
)

// FlaggedName is a finalist the sanity checker objected to.
type FlaggedName struct {
	Name           string `json:"name"`
	Violation      string `json:"violation"`
	Severity       string `json:"severity"`
	Recommendation string `json:"recommendation"`
}

// SanityCheckResult is the sanity-checker stage output. Only flags with
// high severity and a remove recommendation cause a finalist to be dropped.
type SanityCheckResult struct {
	OverallPass   bool          `json:"overall_pass"`
	FlaggedNames  []FlaggedName `json:"flagged_names"`
	ApprovedNames []string      `json:"approved_names"`
	Notes         string        `json:"notes,omitempty"`
}

// RemovalSet returns the normalized names that must be removed from the
// selection: high severity combined with a remove recommendation.
func (r *SanityCheckResult) RemovalSet() map[string]struct{} {
	out := make(map[string]struct{})
	for _, f := range r.FlaggedNames {
		if f.Severity == SeverityHigh && f.Recommendation == RecommendRemove {
			out[normalizeName(f.Name)] = struct{}{}
		}
	}
	return out
}
