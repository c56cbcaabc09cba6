package api

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports store reachability.
type HealthResponse struct {
	Status string `json:"status"`
	Driver string `json:"driver,omitempty"`
}
