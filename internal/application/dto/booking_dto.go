package dto

// BookingPayload cuerpo que espera el sistema de citas del taller.
type BookingPayload struct {
	LicensePlate        string `json:"licensePlate"`
	Nominativo          string `json:"nominativo"`
	CustomerPhonePrefix string `json:"customerPhonePrefix"`
	CustomerPhone       string `json:"customerPhone"`
	BookingDate         string `json:"bookingDate"`
	Deposito            string `json:"deposito"`
	TipoPrenotazione    string `json:"tipoPrenotazione"`
	CreatedBy           string `json:"createdBy"`
	ExtraReminderTime   string `json:"extraReminderTime,omitempty"`
	StatoNotifica       string `json:"statoNotifica,omitempty"`
}

// BookingRequest cuerpo de POST /pitstop/booking.
type BookingRequest struct {
	BookingData *BookingPayload `json:"bookingData"`
}

// BookingResponse respuesta de una cita creada.
type BookingResponse struct {
	Success bool           `json:"success"`
	Booking map[string]any `json:"booking"`
	Message string         `json:"message"`
}
