package contextkeys

type contextKey string

// DBContextKey - ключ, под которым в context лежит *gorm.DB запроса
const DBContextKey = contextKey("db")

// Ключи gin.Context, которые выставляют middleware.
const (
	UserIDKey    = "userID"
	UserRoleKey  = "role"
	RequestIDKey = "request_id"
	SessionIDKey = "session_id"
)
