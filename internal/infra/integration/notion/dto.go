package notion

// --- Requests sent to the Notion REST API ---

type searchRequest struct {
	PageSize    int          `json:"page_size"`
	Filter      searchFilter `json:"filter"`
	StartCursor string       `json:"start_cursor,omitempty"`
}

type searchFilter struct {
	Value    string `json:"value"`
	Property string `json:"property"`
}

type queryRequest struct {
	PageSize int          `json:"page_size"`
	Filter   *queryFilter `json:"filter,omitempty"`
}

type queryFilter struct {
	Property string          `json:"property"`
	RichText *textCondition  `json:"rich_text,omitempty"`
	Title    *textCondition  `json:"title,omitempty"`
	Email    *emailCondition `json:"email,omitempty"`
}

type textCondition struct {
	Equals string `json:"equals"`
}

type emailCondition struct {
	Equals string `json:"equals"`
}

type createPageRequest struct {
	Parent     pageParent          `json:"parent"`
	Properties map[string]property `json:"properties"`
}

type updatePageRequest struct {
	Properties map[string]property `json:"properties"`
}

type pageParent struct {
	DatabaseID string `json:"database_id"`
}

// --- Notion property objects, narrowed to the types the lead set uses ---

type property struct {
	Title    []richText  `json:"title,omitempty"`
	RichText []richText  `json:"rich_text,omitempty"`
	Email    *string     `json:"email,omitempty"`
	URL      *string     `json:"url,omitempty"`
	Select   *selectName `json:"select,omitempty"`
}

type richText struct {
	Text  textContent `json:"text"`
	Plain string      `json:"plain_text,omitempty"`
}

type textContent struct {
	Content string `json:"content"`
}

type selectName struct {
	Name string `json:"name"`
}

// --- Responses ---

type searchResponse struct {
	Results    []databaseObject `json:"results"`
	NextCursor string           `json:"next_cursor"`
	HasMore    bool             `json:"has_more"`
}

type databaseObject struct {
	ID    string     `json:"id"`
	Title []richText `json:"title"`
}

type queryResponse struct {
	Results []pageObject `json:"results"`
}

type pageObject struct {
	ID         string              `json:"id"`
	Properties map[string]property `json:"properties"`
}

type createPageResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
