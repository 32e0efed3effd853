package domain

// Identity is what a session token speaks for.
type Identity struct {
	SubjectID string
	Role      Role
}

// TokenPair is issued together at login. Either half may be revoked later.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
