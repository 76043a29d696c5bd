package domain

// AuthStage represents how far through the two-factor flow a session is.
type AuthStage string

const (
	StageAnonymous        AuthStage = "anonymous"
	StagePasswordVerified AuthStage = "password_verified"
	StageAuthenticated    AuthStage = "authenticated"
)

// validTransitions defines the allowed stage machine transitions. A wrong
// TOTP code is not a transition: the session simply stays where it is.
var validTransitions = map[AuthStage][]AuthStage{
	StageAnonymous:        {StagePasswordVerified},
	StagePasswordVerified: {StageAuthenticated, StageAnonymous},
	StageAuthenticated:    {StageAnonymous},
}

// CanTransitionTo reports whether a transition from the current stage to next is valid.
func (s AuthStage) CanTransitionTo(next AuthStage) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Session is the server-side record of a client's authentication progress,
// keyed by the opaque id handed to the client in a cookie. A session with
// UserID set but SecondFactorConfirmed false is the valid intermediate state
// between the password check and the TOTP challenge; it is not authenticated.
type Session struct {
	ID                    string `json:"id"`
	UserID                string `json:"user_id"`
	SecondFactorConfirmed bool   `json:"second_factor_confirmed"`

	// EnrollmentURI holds the one-time otpauth URI between registration and
	// the enrollment page. Cleared as soon as any later stage begins.
	EnrollmentURI string `json:"enrollment_uri,omitempty"`
}

// Stage derives the current stage from the session's fields.
func (s *Session) Stage() AuthStage {
	switch {
	case s.UserID == "":
		return StageAnonymous
	case !s.SecondFactorConfirmed:
		return StagePasswordVerified
	default:
		return StageAuthenticated
	}
}

// PasswordVerified records a successful stage-1 check. Any prior progress is
// discarded: a new login always restarts the second-factor challenge.
func (s *Session) PasswordVerified(userID string) {
	s.UserID = userID
	s.SecondFactorConfirmed = false
	s.EnrollmentURI = ""
}

// ConfirmSecondFactor records a successful stage-2 check for the given user.
// It fails when the session never passed stage 1, or passed it for a
// different user than the one whose code was just verified.
func (s *Session) ConfirmSecondFactor(userID string) error {
	if !s.Stage().CanTransitionTo(StageAuthenticated) || s.UserID != userID {
		return ErrStageTransition
	}
	s.SecondFactorConfirmed = true
	return nil
}

// Reset returns the session to the anonymous stage. Logout is this plus
// deleting the stored record.
func (s *Session) Reset() {
	s.UserID = ""
	s.SecondFactorConfirmed = false
	s.EnrollmentURI = ""
}

// Authenticated is the gate predicate: both stages must have completed.
func (s *Session) Authenticated() bool {
	return s.UserID != "" && s.SecondFactorConfirmed
}
