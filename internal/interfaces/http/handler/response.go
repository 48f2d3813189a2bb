package handler

import "github.com/cms/backend/internal/interfaces/http/dto"

// APIResponse is the success envelope as rendered in the API docs.
// @Description Envelope with a typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the failure envelope as rendered in the API docs.
// @Description Envelope carrying only an error
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
