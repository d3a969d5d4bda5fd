package models

// TurnRequest for POST /api/v1/turns
type TurnRequest struct {
	Message string `json:"message"`
	Timeout int    `json:"timeout"` // seconds, 0 uses the server default
}

// SetDefaults clamps Timeout to [5, max]. A zero Timeout becomes max.
func (r *TurnRequest) SetDefaults(max int) {
	if r.Timeout == 0 || r.Timeout > max {
		r.Timeout = max
	}
	if r.Timeout < 5 {
		r.Timeout = 5
	}
}

// SessionRequest for DELETE /api/v1/session
type SessionRequest struct {
	Seed *bool `json:"seed,omitempty"` // re-seed from the configured transcript, default true
}

func (r *SessionRequest) ShouldSeed() bool {
	return r.Seed == nil || *r.Seed
}
