package auth

// RegisterRequest is the candidate record for a new user.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Picture  string
	Status   string
}

// SignInRequest carries sign-in credentials.
type SignInRequest struct {
	Email    string
	Password string
}

// Defaults are applied to optional registration fields left empty.
type Defaults struct {
	Picture string
	Status  string
}
