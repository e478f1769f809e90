package models

import "time"

// Session はサーバー側で保持する認証済みセッションです。IDはJWTのjtiと一致します。
type Session struct {
	ID        string     `json:"id"`
	UserID    int64      `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at"`
}

// Active はセッションが失効しておらず期限内かどうかを返します。
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// SessionClaims はトークンから取り出した認証情報です。
type SessionClaims struct {
	UserID    int64
	Username  string
	SessionID string
}
