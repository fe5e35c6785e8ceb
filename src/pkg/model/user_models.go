package model

// User is the authenticated identity returned by the login endpoint.
// The same shape is persisted as the local session.
type User struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
