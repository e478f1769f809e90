// Package modelsはTaskとUserとSessionを定義します。
package models

import "time"

// Task はユーザーが所有するToDoタスクです。
type Task struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"` // 所有者。作成時に確定し、以後変更しない
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Complete    bool      `json:"complete"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskInput は作成・更新リクエストで受け付けるフィールドです。
// 所有者フィールドは持たないため、リクエストから所有者を指定することはできません。
type TaskInput struct {
	Title       string `json:"title" form:"title" binding:"required"`
	Description string `json:"description" form:"description"`
	Complete    bool   `json:"complete" form:"complete"`
}

// TaskList は一覧画面に渡す内容です。
type TaskList struct {
	Tasks       []*Task `json:"tasks"`
	Count       int     `json:"count"` // 未完了タスクの数 (検索後)
	SearchInput string  `json:"search_input"`
}
