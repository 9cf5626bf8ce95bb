package models

type Role string

const (
	RoleCustomer  Role = "customer"
	RoleSalesman  Role = "salesman"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

var Roles = []Role{RoleCustomer, RoleSalesman, RoleModerator, RoleAdmin}

func (r Role) IsStaff() bool {
	return r == RoleSalesman || r == RoleModerator || r == RoleAdmin
}
