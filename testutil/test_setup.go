package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"go-task-list/backend/internal/models"
	"go-task-list/backend/internal/routes"
)

// TestJWTSecret はテスト用ルーターのJWTシークレットです。
const TestJWTSecret = "test_very_secret_jwt_key_here"

// TestPassword はテストユーザー共通のパスワードです (ポリシーを満たす)。
const TestPassword = "correct-horse-42"

// Store はテスト用ルーターが使うインメモリリポジトリです。
type Store struct {
	Tasks    *MemoryTaskRepo
	Users    *MemoryUserRepo
	Sessions *MemorySessionRepo
}

// SetupTestRouter はインメモリリポジトリを使ったテスト用のGinルーターをセットアップします。
func SetupTestRouter(t *testing.T) (*gin.Engine, *Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &Store{
		Tasks:    NewMemoryTaskRepo(),
		Users:    NewMemoryUserRepo(),
		Sessions: NewMemorySessionRepo(),
	}
	r := routes.NewRouter(routes.Dependencies{
		TaskRepo:    store.Tasks,
		UserRepo:    store.Users,
		SessionRepo: store.Sessions,
		JWTSecret:   []byte(TestJWTSecret),
		SessionTTL:  time.Hour,
	})
	return r, store
}

// DoJSON はJSONボディ付きのリクエストを実行します。tokenが空ならAuthorizationヘッダーを付けません。
func DoJSON(t *testing.T, router *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}

	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// DoForm はブラウザのフォーム送信を模したリクエストを実行します。
func DoForm(t *testing.T, router *gin.Engine, method, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// RegisterAndGetToken はユーザーを登録し、自動ログインで得たトークンとユーザーIDを返します。
func RegisterAndGetToken(t *testing.T, router *gin.Engine, username string) (string, int64) {
	t.Helper()
	resp := DoJSON(t, router, http.MethodPost, "/api/register", "", map[string]string{
		"username":         username,
		"password":         TestPassword,
		"password_confirm": TestPassword,
	})
	require.Equal(t, http.StatusCreated, resp.Code, "ユーザー登録に失敗しました: %s", resp.Body.String())

	var res struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	return res.Token, res.User.ID
}

// LoginAndGetToken はログインしてトークンを返します。
func LoginAndGetToken(t *testing.T, router *gin.Engine, username, password string) (string, error) {
	t.Helper()
	resp := DoJSON(t, router, http.MethodPost, "/api/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if resp.Code != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d: %s", resp.Code, resp.Body.String())
	}

	var loginRes map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &loginRes); err != nil {
		return "", fmt.Errorf("failed to unmarshal login response: %w", err)
	}
	token, ok := loginRes["token"].(string)
	if !ok {
		return "", fmt.Errorf("token not found or not a string in login response")
	}
	return token, nil
}

// CreateTestTask はテスト用のタスクをAPI経由で作成します。
func CreateTestTask(t *testing.T, router *gin.Engine, token, title string, complete bool) *models.Task {
	t.Helper()
	resp := DoJSON(t, router, http.MethodPost, "/api/tasks", token, map[string]interface{}{
		"title":    title,
		"complete": complete,
	})
	require.Equal(t, http.StatusCreated, resp.Code, "タスク作成に失敗しました: %s", resp.Body.String())

	var created models.Task
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	return &created
}

// ListTasks は一覧APIを呼び出して結果を返します。
func ListTasks(t *testing.T, router *gin.Engine, token, search string) *models.TaskList {
	t.Helper()
	path := "/api/tasks"
	if search != "" {
		path += "?search-area=" + url.QueryEscape(search)
	}
	resp := DoJSON(t, router, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var list models.TaskList
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	return &list
}
