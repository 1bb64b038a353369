package dto

// NewLeadsWebhookRequest cuerpo que envía la automatización al insertar leads.
type NewLeadsWebhookRequest struct {
	LeadIDs []string `json:"leadIds"`
}

// NewLeadsWebhookResponse resultado del aviso.
type NewLeadsWebhookResponse struct {
	Success  bool   `json:"success"`
	Notified int    `json:"notified"`
	Message  string `json:"message"`
}
