package dto

// RecordResponse returns a stored record value. Value is base64-encoded.
type RecordResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// VerifyResponse reports the result of an integrity check.
type VerifyResponse struct {
	Key   string `json:"key"`
	Valid bool   `json:"valid"`
}

// RotationResponse reports the result of a rotation check.
type RotationResponse struct {
	Rotated bool `json:"rotated"`
}

// AccessLogsResponse returns the local access log lines.
type AccessLogsResponse struct {
	Logs []string `json:"logs"`
}

// InfoResponse returns display facts about the store's protection state.
type InfoResponse struct {
	Info map[string]string `json:"info"`
}
