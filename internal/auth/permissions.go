package auth

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

func IsAdmin(role string) bool {
	return role == RoleAdmin
}

// CanModify - автор контента или администратор.
func CanModify(ownerID, userID, role string) bool {
	if IsAdmin(role) {
		return true
	}
	return ownerID != "" && ownerID == userID
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
