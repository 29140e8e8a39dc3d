package types

// SuccessEnvelope wraps every 2xx payload.
type SuccessEnvelope struct {
	OK   bool `json:"ok"`
	Data any  `json:"data"`
}

// ErrorEnvelope is the body of every non-2xx response.
type ErrorEnvelope struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}
