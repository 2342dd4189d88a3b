package models

import "time"

// User представляет зарегистрированного пользователя.
// Теги db сопоставляют колонки для sqlx, теги json управляют сериализацией.
type User struct {
	ID           int64     `db:"id" json:"id" bson:"_id"`
	Username     string    `db:"username" json:"username" bson:"username"`
	Email        string    `db:"email" json:"email" bson:"email"`
	PasswordHash string    `db:"password_hash" json:"-" bson:"password_hash"` // никогда не отдается клиентам
	CreatedAt    time.Time `db:"created_at" json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at" bson:"updated_at"`
}

// RegisterRequest это тело запроса POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,password"`
}

// LoginRequest это тело запроса POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult возвращается после успешной регистрации или входа.
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
