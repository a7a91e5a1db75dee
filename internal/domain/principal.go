package domain

const (
	StatusNormal   = "normal"
	StatusLocked   = "locked"
	StatusDisabled = "disabled"
)

const (
	RoleAdmin     = "admin"
	RoleManager   = "manager"
	RolePublisher = "publisher"
	RoleUser      = "user"
	RoleAuditor   = "auditor"
)

const (
	PermissionAdd     = "add"
	PermissionDelete  = "delete"
	PermissionView    = "view"
	PermissionModify  = "modify"
	PermissionRelease = "release"
	PermissionLock    = "lock"
	PermissionExamine = "examine"
	PermissionDisable = "disable"
)

// Principal is the authenticated account as resolved by the credential
// store. It is read-only to the gateway and never persisted by it.
type Principal struct {
	ID          string
	Account     string
	Name        string
	Roles       []string
	Permissions []string
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
