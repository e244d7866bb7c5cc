package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kanban/internal/validate"
)

// handleListTasks lists tasks matching the query string filters.
func (s *Server) handleListTasks(c *gin.Context) {
	var q validate.TaskQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, envelope{Error: "Invalid query parameters"})
		return
	}

	tasks, err := s.tasks.List(c.Request.Context(), q)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, tasks, "Tasks retrieved successfully")
}

func (s *Server) handleGetTask(c *gin.Context) {
	task, err := s.tasks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task, "Task retrieved successfully")
}

// handleCreateTask inserts a new task into a project.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req validate.CreateTaskInput
	if !s.bindJSON(c, &req) {
		return
	}

	task, err := s.tasks.Create(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, task, "Task created successfully")
}

// handleUpdateTask updates any subset of task fields.
func (s *Server) handleUpdateTask(c *gin.Context) {
	var req validate.UpdateTaskInput
	if !s.bindJSON(c, &req) {
		return
	}

	task, err := s.tasks.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task, "Task updated successfully")
}

// handleUpdateTaskStatus moves a task to another column.
func (s *Server) handleUpdateTaskStatus(c *gin.Context) {
	var req validate.StatusInput
	if !s.bindJSON(c, &req) {
		return
	}

	task, err := s.tasks.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task, "Task status updated successfully")
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.tasks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, nil, "Task deleted successfully")
}
