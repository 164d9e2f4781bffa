package domain

// Role names as stored in user_roles.
const (
	RoleSystemManager = "System Manager"
	RoleSalesManager  = "Sales Manager"
	RoleSalesUser     = "Sales User"
)

// Special user identities.
const (
	UserAdministrator = "Administrator"
	UserGuest         = "Guest"
)

// Tier is the assignment privilege level of a user, most privileged first.
type Tier int

const (
	TierPrivileged Tier = iota
	TierManager
	TierSalesUser
	TierNone
)

func (t Tier) String() string {
	switch t {
	case TierPrivileged:
		return "privileged"
	case TierManager:
		return "manager"
	case TierSalesUser:
		return "sales_user"
	default:
		return "none"
	}
}
