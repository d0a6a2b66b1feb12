package models

const (
	NormalUser = "user"
	AdminUser  = "admin"
)

// ValidRole reports whether name is one of the two roles the gateway knows.
func ValidRole(name string) bool {
	return name == NormalUser || name == AdminUser
}
