package enums

type UserRole string

const (
	UserRoleCreator UserRole = "creator"
	UserRoleBuyer   UserRole = "buyer"
	UserRoleAdmin   UserRole = "admin"
)
