package entity

// SearchCriteria is the ideal customer profile the user confirms before
// any search is issued.
type SearchCriteria struct {
	Industry        string   `json:"industry"`
	Geography       string   `json:"geography"`
	Roles           []string `json:"roles"`
	CompanySize     string   `json:"company_size,omitempty"`
	Exclusions      []string `json:"exclusions,omitempty"`
	RequestedFields []string `json:"requested_fields,omitempty"`
	DesiredCount    int      `json:"desired_count,omitempty"`
}

// MissingFields lists the criteria fields that still need user input.
// Company size, exclusions and the field set are optional.
func (c SearchCriteria) MissingFields() []string {
	var missing []string
	if c.Industry == "" {
		missing = append(missing, "industry")
	}
	if c.Geography == "" {
		missing = append(missing, "geography")
	}
	if len(c.Roles) == 0 {
		missing = append(missing, "roles")
	}
	return missing
}
