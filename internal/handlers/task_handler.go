package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"go-task-list/backend/internal/logger"
	"go-task-list/backend/internal/metrics"
	"go-task-list/backend/internal/models"
	"go-task-list/backend/internal/repositories"
	"go-task-list/backend/internal/services"
)

// SearchParam は一覧の検索文字列を受け取るクエリパラメータ名です。
const SearchParam = "search-area"

// TaskHandler はTask関連のハンドラーを管理します。
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler は新しいTaskHandlerを作成します。
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// GetTasksHandler はログインユーザーのタスク一覧と未完了数を返します。
func (h *TaskHandler) GetTasksHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	list, err := h.taskService.ListTasks(c.Request.Context(), userID, c.Query(SearchParam))
	if err != nil {
		logger.Error("failed to list tasks", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetTaskByIDHandler は指定IDのTaskを取得します。
func (h *TaskHandler) GetTaskByIDHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), userID, id)
	if err != nil {
		writeTaskError(c, err, "Failed to fetch task")
		return
	}
	c.JSON(http.StatusOK, task)
}

// CreateTaskHandler は新しいTaskを作成します。
func (h *TaskHandler) CreateTaskHandler(c *gin.Context) {
	var in models.TaskInput
	if err := bindTaskInput(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	created, err := h.taskService.CreateTask(c.Request.Context(), userID, in)
	metrics.TaskOperations.WithLabelValues("create", metrics.Result(err)).Inc()
	if err != nil {
		writeTaskError(c, err, "Failed to save task")
		return
	}
	respond(c, http.StatusCreated, created, TaskListPath)
}

// UpdateTaskHandler はTaskを更新します。
func (h *TaskHandler) UpdateTaskHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var in models.TaskInput
	if err := bindTaskInput(c, &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), userID, id, in)
	metrics.TaskOperations.WithLabelValues("update", metrics.Result(err)).Inc()
	if err != nil {
		writeTaskError(c, err, "Failed to update task")
		return
	}
	respond(c, http.StatusOK, updated, TaskListPath)
}

// DeleteTaskHandler はTaskを削除します。
func (h *TaskHandler) DeleteTaskHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	err := h.taskService.DeleteTask(c.Request.Context(), userID, id)
	metrics.TaskOperations.WithLabelValues("delete", metrics.Result(err)).Inc()
	if err != nil {
		writeTaskError(c, err, "Failed to delete task")
		return
	}
	respond(c, http.StatusNoContent, nil, TaskListPath)
}

// multipartMemory はmultipartフォームをメモリに読み込む上限です。
const multipartMemory = 32 << 20

// bindTaskInput はJSONまたはフォームをTaskInputにバインドします。
// ブラウザのチェックボックスは "on" を送るため、true に読み替えてからバインドします。
func bindTaskInput(c *gin.Context, in *models.TaskInput) error {
	switch c.ContentType() {
	case gin.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			return err
		}
		normalizeCheckbox(c.Request.PostForm, "complete")
		normalizeCheckbox(c.Request.Form, "complete")
	case gin.MIMEMultipartPOSTForm:
		if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
			return err
		}
		normalizeCheckbox(c.Request.PostForm, "complete")
		normalizeCheckbox(c.Request.Form, "complete")
		normalizeCheckbox(c.Request.MultipartForm.Value, "complete")
	}
	return c.ShouldBind(in)
}

func normalizeCheckbox(values url.Values, key string) {
	for i, v := range values[key] {
		if strings.EqualFold(v, "on") {
			values[key][i] = "true"
		}
	}
}

// writeTaskError はサービス層のエラーをHTTPステータスに変換します。
func writeTaskError(c *gin.Context, err error, fallback string) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task", "field": validationErr.Field, "details": validationErr.Message})
	case errors.Is(err, repositories.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, services.ErrTaskForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	default:
		logger.Error(fallback, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
