package dto

import "github.com/jhoicas/calldesk-api/internal/domain/entity"

// ListLeadsQuery parámetros de GET /leads y /leads/table.
type ListLeadsQuery struct {
	Status string `query:"status"`
	View   string `query:"view"`
}

// ViewAll valor de view que ignora el filtro de estado.
const ViewAll = "all"

// UpdateLeadRequest cuerpo de PATCH /leads/:id (formulario de edición).
type UpdateLeadRequest struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	Status        *string `json:"status"`
	Notes         *string `json:"notes"`
	OperatorNotes *string `json:"operatorNotes"`
}

// UpdateStatusRequest cuerpo de PATCH /leads/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// StatusOptionsResponse estados a los que el operador puede mover la lead.
type StatusOptionsResponse struct {
	Current entity.Status   `json:"current"`
	Options []entity.Status `json:"options"`
}

// LeadStatsResponse KPIs del panel.
type LeadStatsResponse struct {
	Total    int `json:"total"`
	ToHandle int `json:"toHandle"`
	Handled  int `json:"handled"`
}
