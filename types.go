package micromatch

import "encoding/json"

// Wire types for the /api/data endpoints, shared by the server and the
// Go client.

type CreateDataRequest struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

type UpdateDataRequest struct {
	Data json.RawMessage `json:"data"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
