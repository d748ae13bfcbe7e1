package httpapi

// IngestRequest is the body for POST /ingest.
type IngestRequest struct {
	Text        string `json:"text"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// FactRequest is the body for POST /fact.
type FactRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
	ID      string `json:"id,omitempty"`
}

// AskRequest is the body for POST /ask.
type AskRequest struct {
	Question string `json:"question"`
	Strategy string `json:"strategy,omitempty"`
}

// AugmentRequest is the body for POST /augment.
type AugmentRequest struct {
	Text     string `json:"text"`
	Strategy string `json:"strategy,omitempty"`
}

// JobResponse acknowledges an accepted background job.
type JobResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// CountResponse carries a node or edge count.
type CountResponse struct {
	Namespace string `json:"namespace"`
	Count     int    `json:"count"`
}

// NamespaceResponse carries the graph namespace.
type NamespaceResponse struct {
	Namespace string `json:"namespace"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
