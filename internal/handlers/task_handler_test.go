package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-task-list/backend/internal/models"
	"go-task-list/backend/internal/repositories"
	"go-task-list/backend/testutil"
)

func TestTaskList_Scenarios(t *testing.T) {
	r, store := testutil.SetupTestRouter(t)

	// 1. 登録すると自動でログインし、一覧は空
	aliceToken, aliceID := testutil.RegisterAndGetToken(t, r, "alice")
	list := testutil.ListTasks(t, r, aliceToken, "")
	assert.Empty(t, list.Tasks)
	assert.Equal(t, 0, list.Count)

	// 2. 完了済みタスクは未完了数に含まれない
	milk := testutil.CreateTestTask(t, r, aliceToken, "Buy milk", false)
	list = testutil.ListTasks(t, r, aliceToken, "")
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, 1, list.Count)

	testutil.CreateTestTask(t, r, aliceToken, "Buy eggs", true)
	list = testutil.ListTasks(t, r, aliceToken, "")
	assert.Len(t, list.Tasks, 2)
	assert.Equal(t, 1, list.Count)

	// 3. 前方一致検索
	list = testutil.ListTasks(t, r, aliceToken, "Buy m")
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, milk.ID, list.Tasks[0].ID)
	assert.Equal(t, "Buy m", list.SearchInput)

	// 4. 他人のタスクは削除できず、一覧も変わらない
	bobToken, _ := testutil.RegisterAndGetToken(t, r, "bob")
	resp := testutil.DoJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", milk.ID), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	list = testutil.ListTasks(t, r, aliceToken, "")
	assert.Len(t, list.Tasks, 2)
	for _, task := range list.Tasks {
		assert.Equal(t, aliceID, task.UserID)
	}
	assert.Empty(t, testutil.ListTasks(t, r, bobToken, "").Tasks)

	stored, err := store.Tasks.FindByID(context.Background(), milk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", stored.Title)
}

func TestCreateTask_IgnoresUserIDInBody(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)
	_, aliceID := testutil.RegisterAndGetToken(t, r, "alice")
	bobToken, bobID := testutil.RegisterAndGetToken(t, r, "bob")

	resp := testutil.DoJSON(t, r, http.MethodPost, "/api/tasks", bobToken, map[string]interface{}{
		"title":   "Planted task",
		"user_id": aliceID,
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	var created models.Task
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Equal(t, bobID, created.UserID)
}

func TestCreateTask_Validation(t *testing.T) {
	r, store := testutil.SetupTestRouter(t)
	token, _ := testutil.RegisterAndGetToken(t, r, "alice")

	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"missing title", map[string]interface{}{"description": "no title"}},
		{"blank title", map[string]interface{}{"title": "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.DoJSON(t, r, http.MethodPost, "/api/tasks", token, tt.payload)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
	assert.Zero(t, store.Tasks.Writes)
}

func TestGetTaskByID(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)
	aliceToken, _ := testutil.RegisterAndGetToken(t, r, "alice")
	bobToken, _ := testutil.RegisterAndGetToken(t, r, "bob")
	task := testutil.CreateTestTask(t, r, aliceToken, "Buy milk", false)
	path := fmt.Sprintf("/api/tasks/%d", task.ID)

	resp := testutil.DoJSON(t, r, http.MethodGet, path, aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var got models.Task
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, "Buy milk", got.Title)

	resp = testutil.DoJSON(t, r, http.MethodGet, path, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = testutil.DoJSON(t, r, http.MethodGet, "/api/tasks/9999", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = testutil.DoJSON(t, r, http.MethodGet, "/api/tasks/abc", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUpdateTask(t *testing.T) {
	r, store := testutil.SetupTestRouter(t)
	aliceToken, aliceID := testutil.RegisterAndGetToken(t, r, "alice")
	bobToken, bobID := testutil.RegisterAndGetToken(t, r, "bob")
	task := testutil.CreateTestTask(t, r, aliceToken, "Buy milk", false)
	path := fmt.Sprintf("/api/tasks/%d", task.ID)

	t.Run("owner", func(t *testing.T) {
		resp := testutil.DoJSON(t, r, http.MethodPut, path, aliceToken, map[string]interface{}{
			"title":    "Buy oat milk",
			"complete": true,
			"user_id":  bobID,
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		var updated models.Task
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
		assert.Equal(t, "Buy oat milk", updated.Title)
		assert.True(t, updated.Complete)
		assert.Equal(t, aliceID, updated.UserID)
	})

	t.Run("same values twice", func(t *testing.T) {
		payload := map[string]interface{}{"title": "Buy oat milk", "complete": true}
		writes := store.Tasks.Writes
		resp := testutil.DoJSON(t, r, http.MethodPut, path, aliceToken, payload)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, writes, store.Tasks.Writes)
	})

	t.Run("other user", func(t *testing.T) {
		resp := testutil.DoJSON(t, r, http.MethodPut, path, bobToken, map[string]interface{}{"title": "hijacked"})
		assert.Equal(t, http.StatusForbidden, resp.Code)

		list := testutil.ListTasks(t, r, aliceToken, "")
		require.Len(t, list.Tasks, 1)
		assert.Equal(t, "Buy oat milk", list.Tasks[0].Title)
	})

	t.Run("missing", func(t *testing.T) {
		resp := testutil.DoJSON(t, r, http.MethodPut, "/api/tasks/9999", aliceToken, map[string]interface{}{"title": "x"})
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestDeleteTask(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)
	token, _ := testutil.RegisterAndGetToken(t, r, "alice")
	task := testutil.CreateTestTask(t, r, token, "Buy milk", false)
	path := fmt.Sprintf("/api/tasks/%d", task.ID)

	resp := testutil.DoJSON(t, r, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Empty(t, testutil.ListTasks(t, r, token, "").Tasks)

	resp = testutil.DoJSON(t, r, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListTasks_WhitespaceSearchIsUnfiltered(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)
	token, _ := testutil.RegisterAndGetToken(t, r, "alice")
	testutil.CreateTestTask(t, r, token, "Buy milk", false)
	testutil.CreateTestTask(t, r, token, "Call mom", false)

	all := testutil.ListTasks(t, r, token, "")
	blank := testutil.ListTasks(t, r, token, "   ")
	assert.Equal(t, all.Tasks, blank.Tasks)
	assert.Equal(t, all.Count, blank.Count)

	assert.Empty(t, testutil.ListTasks(t, r, token, "buy").Tasks)
}

func TestTaskForms_RedirectToList(t *testing.T) {
	r, store := testutil.SetupTestRouter(t)

	resp := testutil.DoForm(t, r, http.MethodPost, "/api/register", url.Values{
		"username":  {"alice"},
		"password1": {testutil.TestPassword},
		"password2": {testutil.TestPassword},
	})
	require.Equal(t, http.StatusSeeOther, resp.Code, resp.Body.String())
	assert.Equal(t, "/api/tasks", resp.Header().Get("Location"))

	cookies := resp.Result().Cookies()
	require.NotEmpty(t, cookies)

	resp = testutil.DoForm(t, r, http.MethodPost, "/api/tasks", url.Values{
		"title":       {"Buy milk"},
		"description": {"2 litres"},
	}, cookies...)
	require.Equal(t, http.StatusSeeOther, resp.Code, resp.Body.String())
	assert.Equal(t, "/api/tasks", resp.Header().Get("Location"))

	tasks, err := store.Tasks.FindByUserID(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "2 litres", tasks[0].Description)

	resp = testutil.DoForm(t, r, http.MethodPut, fmt.Sprintf("/api/tasks/%d", tasks[0].ID), url.Values{
		"title":    {"Buy milk"},
		"complete": {"true"},
	}, cookies...)
	require.Equal(t, http.StatusSeeOther, resp.Code)

	resp = testutil.DoForm(t, r, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", tasks[0].ID), url.Values{}, cookies...)
	require.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/api/tasks", resp.Header().Get("Location"))
}

// registerByForm はフォームで登録し、セッションCookieを返します。
func registerByForm(t *testing.T, r *gin.Engine, username string) []*http.Cookie {
	t.Helper()
	resp := testutil.DoForm(t, r, http.MethodPost, "/api/register", url.Values{
		"username":  {username},
		"password1": {testutil.TestPassword},
		"password2": {testutil.TestPassword},
	})
	require.Equal(t, http.StatusSeeOther, resp.Code, resp.Body.String())
	cookies := resp.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestTaskForms_CheckboxOn(t *testing.T) {
	r, store := testutil.SetupTestRouter(t)
	cookies := registerByForm(t, r, "alice")

	resp := testutil.DoForm(t, r, http.MethodPost, "/api/tasks", url.Values{
		"title":    {"Buy milk"},
		"complete": {"on"},
	}, cookies...)
	require.Equal(t, http.StatusSeeOther, resp.Code, resp.Body.String())

	tasks, err := store.Tasks.FindByUserID(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Complete)

	// チェックを外すとフィールド自体が送られない
	resp = testutil.DoForm(t, r, http.MethodPut, fmt.Sprintf("/api/tasks/%d", tasks[0].ID), url.Values{
		"title": {"Buy milk"},
	}, cookies...)
	require.Equal(t, http.StatusSeeOther, resp.Code, resp.Body.String())
	stored, err := store.Tasks.FindByID(context.Background(), tasks[0].ID)
	require.NoError(t, err)
	assert.False(t, stored.Complete)

	resp = testutil.DoForm(t, r, http.MethodPut, fmt.Sprintf("/api/tasks/%d", tasks[0].ID), url.Values{
		"title":    {"Buy milk"},
		"complete": {"on"},
	}, cookies...)
	require.Equal(t, http.StatusSeeOther, resp.Code, resp.Body.String())
	stored, err = store.Tasks.FindByID(context.Background(), tasks[0].ID)
	require.NoError(t, err)
	assert.True(t, stored.Complete)
}

func TestTaskForms_PostAliases(t *testing.T) {
	r, store := testutil.SetupTestRouter(t)
	cookies := registerByForm(t, r, "alice")
	bobToken, _ := testutil.RegisterAndGetToken(t, r, "bob")

	resp := testutil.DoForm(t, r, http.MethodPost, "/api/tasks", url.Values{"title": {"Buy milk"}}, cookies...)
	require.Equal(t, http.StatusSeeOther, resp.Code)
	tasks, err := store.Tasks.FindByUserID(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	id := tasks[0].ID

	resp = testutil.DoForm(t, r, http.MethodPost, fmt.Sprintf("/api/tasks/%d/update", id), url.Values{
		"title":       {"Buy oat milk"},
		"description": {"brand X"},
		"complete":    {"on"},
	}, cookies...)
	require.Equal(t, http.StatusSeeOther, resp.Code, resp.Body.String())
	assert.Equal(t, "/api/tasks", resp.Header().Get("Location"))

	stored, err := store.Tasks.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", stored.Title)
	assert.Equal(t, "brand X", stored.Description)
	assert.True(t, stored.Complete)

	// 所有者チェックはPOST経由でも同じ
	resp = testutil.DoJSON(t, r, http.MethodPost, fmt.Sprintf("/api/tasks/%d/delete", id), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = testutil.DoForm(t, r, http.MethodPost, fmt.Sprintf("/api/tasks/%d/delete", id), url.Values{}, cookies...)
	require.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/api/tasks", resp.Header().Get("Location"))

	_, err = store.Tasks.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, repositories.ErrTaskNotFound)
}
