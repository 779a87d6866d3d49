package usecase

import (
	"fmt"
	"strings"

	"github.com/growthkit/leadflow/internal/entity"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateCriteria(criteria entity.SearchCriteria) []ValidationError {
	var errs []ValidationError
	for _, field := range criteria.MissingFields() {
		errs = append(errs, ValidationError{field, "is required"})
	}
	if criteria.DesiredCount < 0 {
		errs = append(errs, ValidationError{"desired_count", "must not be negative"})
	}
	return errs
}

// DroppedLead records a candidate removed during validation, with the reason.
// Dropped candidates are reported, never silently discarded.
type DroppedLead struct {
	Lead   entity.Lead `json:"lead"`
	Reason string      `json:"reason"`
}

// roleFits checks a candidate's role against the criteria role list.
// Matching is substring-based in either direction after normalization.
func roleFits(role string, criteria entity.SearchCriteria) bool {
	if len(criteria.Roles) == 0 {
		return true
	}
	got := entity.NormalizeText(role)
	if got == "" {
		return false
	}
	for _, want := range criteria.Roles {
		want = entity.NormalizeText(want)
		if strings.Contains(got, want) || strings.Contains(want, got) {
			return true
		}
	}
	return false
}

// excluded checks the candidate's company against the criteria exclusions.
func excluded(company string, criteria entity.SearchCriteria) bool {
	got := entity.NormalizeText(company)
	for _, ex := range criteria.Exclusions {
		if ex = entity.NormalizeText(ex); ex != "" && strings.Contains(got, ex) {
			return true
		}
	}
	return false
}

// validateCandidates applies role fit, exclusions and in-batch dedup,
// assigns confidence labels, and returns survivors plus the dropped set.
func validateCandidates(candidates []entity.Lead, criteria entity.SearchCriteria) ([]entity.Lead, []DroppedLead) {
	var kept []entity.Lead
	var dropped []DroppedLead
	seen := make(map[string]int) // match key -> index into kept

	for _, lead := range candidates {
		if err := lead.Validate(); err != nil {
			dropped = append(dropped, DroppedLead{lead, err.Error()})
			continue
		}
		if !roleFits(lead.Role, criteria) {
			dropped = append(dropped, DroppedLead{lead, fmt.Sprintf("role %q does not fit the stated profile", lead.Role)})
			continue
		}
		if excluded(lead.Company, criteria) {
			dropped = append(dropped, DroppedLead{lead, fmt.Sprintf("company %q is excluded", lead.Company)})
			continue
		}

		key := lead.MatchKey()
		if i, dup := seen[key]; dup {
			mergeLead(&kept[i], lead)
			dropped = append(dropped, DroppedLead{lead, fmt.Sprintf("duplicate of %q, merged", kept[i].Name)})
			continue
		}

		lead.Confidence = assessConfidence(lead)
		appendNote(&lead, freshnessNote())
		seen[key] = len(kept)
		kept = append(kept, lead)
	}

	return kept, dropped
}

// mergeLead fills gaps in the surviving duplicate from the newcomer.
func mergeLead(dst *entity.Lead, src entity.Lead) {
	if dst.Email == "" {
		dst.Email = src.Email
	}
	if dst.Role == "" {
		dst.Role = src.Role
	}
	if src.Notes != "" {
		appendNote(dst, src.Notes)
	}
}

func assessConfidence(lead entity.Lead) string {
	switch {
	case lead.Email != "" && lead.Role != "":
		return entity.ConfidenceHigh
	case lead.Role != "":
		return entity.ConfidenceMedium
	default:
		return entity.ConfidenceLow
	}
}

func freshnessNote() string {
	return "found " + sessionClock().Format("2006-01-02")
}

func appendNote(lead *entity.Lead, note string) {
	if note == "" {
		return
	}
	if lead.Notes == "" {
		lead.Notes = note
		return
	}
	lead.Notes += "; " + note
}
