package enrichment

type searchRequest struct {
	Query    string `json:"query"`
	TenantID string `json:"tenant_id"`
	Count    int    `json:"count"`
}

type leadPayload struct {
	FullName    string `json:"full_name"`
	JobTitle    string `json:"job_title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	LinkedInURL string `json:"linkedin_url"`
}

type searchResponse struct {
	Leads                 []leadPayload `json:"leads"`
	ExistingExcludedCount int           `json:"existing_excluded_count"`
	Error                 string        `json:"error"`
}
