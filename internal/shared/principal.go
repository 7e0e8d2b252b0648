package shared

// Role is the wire discriminator carried in tokens and returned to clients.
type Role string

const (
	RoleCadet  Role = "user"
	RoleAdmin  Role = "admin"
	RoleMaster Role = "master"
)

// Principal is the authenticated caller. The set of implementations is closed:
// CadetPrincipal, AdminPrincipal and MasterPrincipal.
type Principal interface {
	Role() Role
	sealed()
}

// CadetPrincipal identifies a cadet by registration number within one unit.
type CadetPrincipal struct {
	ID               int64
	RegimentalNumber string
	UnitID           string
}

// AdminPrincipal identifies the unit-admin (ANO) of UnitID.
type AdminPrincipal struct {
	ID          int64
	UnitID      string
	Designation string
}

// MasterPrincipal identifies a super-admin by phone number.
type MasterPrincipal struct {
	Phone string
}

func (CadetPrincipal) Role() Role  { return RoleCadet }
func (AdminPrincipal) Role() Role  { return RoleAdmin }
func (MasterPrincipal) Role() Role { return RoleMaster }

func (CadetPrincipal) sealed()  {}
func (AdminPrincipal) sealed()  {}
func (MasterPrincipal) sealed() {}

// Match dispatches on the concrete principal. Every authorization checkpoint
// that branches on role goes through here so a new role breaks the build
// rather than falling through silently. A nil principal yields the zero T.
func Match[T any](p Principal, cadet func(CadetPrincipal) T, admin func(AdminPrincipal) T, master func(MasterPrincipal) T) T {
	switch v := p.(type) {
	case CadetPrincipal:
		return cadet(v)
	case AdminPrincipal:
		return admin(v)
	case MasterPrincipal:
		return master(v)
	}
	var zero T
	return zero
}

// AsCadet narrows p to a cadet.
func AsCadet(p Principal) (CadetPrincipal, bool) {
	c, ok := p.(CadetPrincipal)
	return c, ok
}

// AsAdmin narrows p to a unit-admin.
func AsAdmin(p Principal) (AdminPrincipal, bool) {
	a, ok := p.(AdminPrincipal)
	return a, ok
}

// AsMaster narrows p to a super-admin.
func AsMaster(p Principal) (MasterPrincipal, bool) {
	m, ok := p.(MasterPrincipal)
	return m, ok
}

// UnitOf returns the unit a cadet or unit-admin belongs to. Super-admins have
// no unit.
func UnitOf(p Principal) (string, bool) {
	type unit struct {
		id string
		ok bool
	}
	u := Match(p,
		func(c CadetPrincipal) unit { return unit{c.UnitID, true} },
		func(a AdminPrincipal) unit { return unit{a.UnitID, true} },
		func(MasterPrincipal) unit { return unit{} },
	)
	return u.id, u.ok
}

// Subject returns the identity string recorded in system logs.
func Subject(p Principal) string {
	return Match(p,
		func(c CadetPrincipal) string { return c.RegimentalNumber },
		func(a AdminPrincipal) string { return a.UnitID },
		func(m MasterPrincipal) string { return m.Phone },
	)
}
