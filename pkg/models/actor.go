package models

// Actor is the identity a request acts as. Admin marks the privileged
// GM role with full read/write/config rights.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
}

// User is a registry entry for a known player, used to resolve
// invite/kick targets by name.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Role is "admin" for the GM, empty otherwise.
	Role string `json:"role,omitempty"`
}
