package model

import "time"

// User : учетная запись. Создается один раз при регистрации,
// подсистема аутентификации ее не удаляет.
type User struct {
	UUID         string    `db:"uuid" json:"uuid"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
