package domain

// Identity is the user resolved from the external auth provider's session.
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Authenticated reports whether a user id was resolved.
func (i Identity) Authenticated() bool {
	return i.UserID != ""
}
