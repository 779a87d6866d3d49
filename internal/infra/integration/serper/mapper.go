package serper

import (
	"context"
	"regexp"
	"strings"

	"github.com/growthkit/leadflow/internal/entity"
	"github.com/growthkit/leadflow/internal/usecase"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// Mapper turns raw search hits into candidate leads by parsing the common
// "Name - Role - Company" title shape profile pages use. Hits that don't
// parse are skipped, never invented; the validation step handles the rest.
type Mapper struct{}

func NewMapper() *Mapper {
	return &Mapper{}
}

func (m *Mapper) ParseCandidates(_ context.Context, results []usecase.SearchResult) ([]entity.Lead, error) {
	var leads []entity.Lead
	for _, result := range results {
		lead, ok := parseResult(result)
		if !ok {
			continue
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

func parseResult(result usecase.SearchResult) (entity.Lead, bool) {
	title := result.Title
	if i := strings.IndexAny(title, "|·"); i >= 0 {
		title = title[:i]
	}

	parts := strings.Split(title, " - ")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var name, role, company string
	switch {
	case len(parts) >= 3:
		name, role, company = parts[0], parts[1], parts[2]
	case len(parts) == 2:
		name, role = parts[0], parts[1]
		// "Role at Company" is the other common shape
		if at := strings.Index(strings.ToLower(role), " at "); at >= 0 {
			company = strings.TrimSpace(role[at+4:])
			role = strings.TrimSpace(role[:at])
		}
	default:
		return entity.Lead{}, false
	}

	if name == "" || company == "" || result.URL == "" {
		return entity.Lead{}, false
	}

	email := emailPattern.FindString(result.Snippet)

	lead, err := entity.NewLead(name, role, company, email, result.URL)
	if err != nil {
		return entity.Lead{}, false
	}
	return *lead, true
}
