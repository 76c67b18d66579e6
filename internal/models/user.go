package models

// Role is the client-side role vocabulary. The backend uses the same
// strings today; Normalize keeps the seam in one place if that changes.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleBusinessOwner Role = "business_owner"
	RoleCustomer      Role = "customer"
)

// RoleChoice is what a registration form offers. The backend does not
// accept "business" as a persisted role, so choices go through
// BackendRole before the request is built.
type RoleChoice string

const (
	ChoiceCustomer RoleChoice = "customer"
	ChoiceBusiness RoleChoice = "business"
)

// single mapping table for the request-role / persisted-role split,
// instead of inline conditionals scattered across callers
var choiceToBackend = map[RoleChoice]string{
	ChoiceCustomer: "customer",
	ChoiceBusiness: "business_owner",
}

var backendToRole = map[string]Role{
	"admin":          RoleAdmin,
	"business_owner": RoleBusinessOwner,
	"customer":       RoleCustomer,
}

// BackendRole maps a user-facing role choice to the backend's vocabulary.
func BackendRole(c RoleChoice) (string, bool) {
	r, ok := choiceToBackend[c]
	return r, ok
}

// NormalizeRole maps a backend role string to the client enumeration.
// Unknown strings come back as ok=false so callers can reject them.
func NormalizeRole(s string) (Role, bool) {
	r, ok := backendToRole[s]
	return r, ok
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Valid reports whether the identity carries every required field.
// Restore refuses to trust a persisted identity that fails this.
func (u User) Valid() bool {
	if u.ID == "" || u.Email == "" {
		return false
	}
	_, ok := backendToRole[string(u.Role)]
	return ok
}
