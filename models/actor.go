package models

// Actor is the authenticated caller of a service operation, as proven by the
// request's signed token.
type Actor struct {
	ID   uint
	Role UserRole
}

// Anonymous is the zero actor.
var Anonymous = Actor{}

func (a Actor) IsAnonymous() bool {
	return a.ID == 0
}
