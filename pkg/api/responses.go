package api

// AlertResponse is returned by POST /api/v1/alerts.
type AlertResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

// QueueFullResponse is the 429 body when admission control rejects an alert.
type QueueFullResponse struct {
	Error        string `json:"error"`
	QueueSize    int    `json:"queue_size"`
	MaxQueueSize int    `json:"max_queue_size"`
}

// CancelResponse is returned by the session and stage cancel endpoints.
type CancelResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// ResumeResponse is returned by POST /api/v1/history/sessions/:id/resume.
type ResumeResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// HealthCheck is one component's entry in the health response.
type HealthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string                 `json:"status"`
	Version string                 `json:"version"`
	Checks  map[string]HealthCheck `json:"checks"`
}
