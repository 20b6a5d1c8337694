package httpgin

type TakeRequest struct {
	Clinic string `json:"clinic" binding:"required"`
}

type NextRequest struct {
	Counter int `json:"counter" binding:"omitempty,gt=0"`
}

type RecallRequest struct {
	ID      int64 `json:"id" binding:"required,gt=0"`
	Counter int   `json:"counter" binding:"omitempty,gt=0"`
}

type TicketIDRequest struct {
	ID int64 `json:"id" binding:"required,gt=0"`
}

type ChangeClinicRequest struct {
	ID     int64  `json:"id" binding:"required,gt=0"`
	Clinic string `json:"clinic" binding:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type ResetResponse struct {
	Success bool  `json:"success"`
	Deleted int64 `json:"deleted"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
