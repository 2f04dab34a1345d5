package types

// SuccessEnvelope wraps every 2xx/303 body. Location mirrors the redirect
// target for clients that read the body instead of following it.
type SuccessEnvelope struct {
	Data     any    `json:"data"`
	Location string `json:"location,omitempty"`
}

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
