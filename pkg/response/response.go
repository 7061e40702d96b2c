package response

// ErrorBody is the JSON error envelope used by middleware.
type ErrorBody struct {
	Success bool             `json:"success"`
	Error   ErrorDescription `json:"error"`
}

type ErrorDescription struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func Error(code, message string, details any) ErrorBody {
	return ErrorBody{
		Success: false,
		Error: ErrorDescription{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
