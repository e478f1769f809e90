// Package handlers はHTTPハンドラーを提供します。
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// gin.Context に設定する認証情報のキー
const (
	ContextUserID    = "user_id"
	ContextUsername  = "username"
	ContextSessionID = "session_id"
)

// SessionCookie はセッショントークンを保存するCookie名です。
const SessionCookie = "session"

// 画面遷移先
const (
	TaskListPath = "/api/tasks"
	LoginPath    = "/api/login"
)

// WantsHTML はクライアントがJSONよりHTMLを優先するかどうかを返します。
// HTMLを望むクライアント (フォーム送信) にはリダイレクトで応答します。
func WantsHTML(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML
}

// respond はHTMLクライアントならlocationへリダイレクトし、それ以外はJSONを返します。
// bodyがnilの場合はステータスのみ返します。
func respond(c *gin.Context, status int, body any, location string) {
	if WantsHTML(c) {
		c.Redirect(http.StatusSeeOther, location)
		return
	}
	if body == nil {
		c.Status(status)
		return
	}
	c.JSON(status, body)
}

// currentUserID は認証ミドルウェアが設定したユーザーIDを取り出します。
// 取り出せない場合はレスポンスを書き込んでfalseを返します。
func currentUserID(c *gin.Context) (int64, bool) {
	userIDVal, exists := c.Get(ContextUserID)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context"})
		return 0, false
	}
	userID, ok := userIDVal.(int64)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID type in context"})
		return 0, false
	}
	return userID, true
}

// isAuthenticated はリクエストが既にログイン済みかどうかを返します。
func isAuthenticated(c *gin.Context) bool {
	_, exists := c.Get(ContextUserID)
	return exists
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return 0, false
	}
	return id, true
}
