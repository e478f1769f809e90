package models

import "time"

// User はユーザーのデータベース構造体を表します。
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // JSONに出さない
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UserRegisterRequest struct {
	Username        string `json:"username" form:"username" binding:"required,max=150"`
	Password        string `json:"password" form:"password1" binding:"required"`
	PasswordConfirm string `json:"password_confirm" form:"password2" binding:"required"`
}

type UserLoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}
