package domain

// AuthDecision is the gateway's per-request outcome. It exists only for
// the duration of one request and is never persisted.
type AuthDecision struct {
	Allowed   bool
	Rotated   bool
	NewToken  string
	Principal Principal
	Reason    error
}

func Allow(p Principal) AuthDecision {
	return AuthDecision{Allowed: true, Principal: p}
}

func Rotate(newToken string, p Principal) AuthDecision {
	return AuthDecision{Allowed: true, Rotated: true, NewToken: newToken, Principal: p}
}

func Deny(reason error) AuthDecision {
	return AuthDecision{Reason: reason}
}
