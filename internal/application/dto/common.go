package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessMessage respuesta genérica de confirmación.
type SuccessMessage struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
