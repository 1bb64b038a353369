package dto

// AIAgentRequest cuerpo de POST /ai-agent.
type AIAgentRequest struct {
	UserEmail string `json:"userEmail"`
}

// AIAgentResponse texto devuelto por la automatización.
type AIAgentResponse struct {
	Response string `json:"response"`
}

// TriageRequest contexto que se envía al webhook de la automatización.
// AllowedRequestTypes nil se serializa como null (admin, sin restricción).
type TriageRequest struct {
	Timestamp           string   `json:"timestamp"`
	UserEmail           string   `json:"userEmail"`
	UserRole            string   `json:"userRole"`
	AllowedRequestTypes []string `json:"allowedRequestTypes"`
}
