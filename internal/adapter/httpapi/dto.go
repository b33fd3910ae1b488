package httpapi

type setHoursRequest struct {
	Hours *float64 `json:"hours" validate:"required"`
}

type setPriorityRequest struct {
	Priority string `json:"priority" validate:"required,oneof=high medium low"`
}

type setNotesRequest struct {
	Notes string `json:"notes" validate:"max=4000"`
}

// A null or absent date clears the pin.
type setScheduledDateRequest struct {
	Date *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type setAvailabilityRequest struct {
	Hours *float64 `json:"hours" validate:"required,gte=0,lte=24"`
}

type setExamDateRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type listStandardsQuery struct {
	Filter   string `validate:"max=1024"`
	OrderBy  string `validate:"max=256"`
	PageNo   int32  `validate:"gte=0"`
	PageSize int32  `validate:"gte=0,lte=1000"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type listStandardsResponse struct {
	Standards any   `json:"standards"`
	Total     int64 `json:"total"`
	PageNo    int32 `json:"pageNo"`
}
