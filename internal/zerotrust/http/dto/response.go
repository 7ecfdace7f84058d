package dto

// SessionResponse returns a newly issued session token. The token is shown
// exactly once; only its hash is persisted.
type SessionResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in_ms"`
}

// SessionStatusResponse reports current session state.
type SessionStatusResponse struct {
	Active      bool  `json:"active"`
	RemainingMS int64 `json:"remaining_ms"`
}

// AuthorizationResponse reports an operation authorization result.
type AuthorizationResponse struct {
	Operation  string `json:"operation"`
	Authorized bool   `json:"authorized"`
}

// AttestationResponse reports the environment attestation result.
type AttestationResponse struct {
	Trusted bool `json:"trusted"`
}

// SuspiciousResponse reports the persisted suspicious flag.
type SuspiciousResponse struct {
	Suspicious bool `json:"suspicious"`
}
