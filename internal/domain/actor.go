package domain

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UID     string
	Email   string
	Name    string
	IsAdmin bool
}
