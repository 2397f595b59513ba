package domain

type Role string

const RoleUser Role = "USER"

// Account is the login credential record. It is never serialized to clients.
type Account struct {
	ID       string `bson:"_id"`
	Name     string `bson:"name"`
	Username string `bson:"username"`
	Email    string `bson:"email"`
	Password string `bson:"password"`
	Role     Role   `bson:"role"`
}
