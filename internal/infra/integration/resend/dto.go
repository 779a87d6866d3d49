package resend

// --- Requests sent to the Resend REST API ---

type sendEmailRequest struct {
	From        string   `json:"from"`
	To          []string `json:"to"`
	Subject     string   `json:"subject"`
	HTML        string   `json:"html,omitempty"`
	Text        string   `json:"text,omitempty"`
	ScheduledAt string   `json:"scheduled_at,omitempty"`
}

type updateEmailRequest struct {
	ScheduledAt string `json:"scheduled_at,omitempty"`
}

// --- Responses ---

type sendEmailResponse struct {
	ID string `json:"id"`
}

type sendBatchResponse struct {
	Data []sendEmailResponse `json:"data"`
}

type emailResponse struct {
	ID       string   `json:"id"`
	To       []string `json:"to"`
	LastEvent string  `json:"last_event"`
	// Bounce reason, when the provider reports one.
	Bounce *bounceDetail `json:"bounce,omitempty"`
}

type bounceDetail struct {
	Message string `json:"message"`
}

type listEmailsResponse struct {
	Data []emailResponse `json:"data"`
}

type attachmentResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
}

type listAttachmentsResponse struct {
	Data []attachmentResponse `json:"data"`
}

type errorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}
