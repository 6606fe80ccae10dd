package response

// APIError is the backend business-error envelope. Different views use
// different keys for the human readable text.
type APIError struct {
	ErrorText string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// BestMessage picks the first populated field, the text is shown to the
// user verbatim.
func (e *APIError) BestMessage() string {
	if e.ErrorText != "" {
		return e.ErrorText
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Detail
}
