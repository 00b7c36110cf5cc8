package types

import "github.com/m-mizutani/goerr/v2"

// Role is the author role of a message entry
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) String() string {
	return string(r)
}

// Validate checks if the Role is a known value
func (r Role) Validate() error {
	switch r {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return goerr.New("invalid role", goerr.V("role", string(r)))
	}
}
