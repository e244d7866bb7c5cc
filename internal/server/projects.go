package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kanban/internal/validate"
)

// handleListProjects returns all projects with their task counts.
func (s *Server) handleListProjects(c *gin.Context) {
	projects, err := s.projects.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, projects, "Projects retrieved successfully")
}

func (s *Server) handleGetProject(c *gin.Context) {
	project, err := s.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, project, "Project retrieved successfully")
}

// handleCreateProject creates a new project entity.
func (s *Server) handleCreateProject(c *gin.Context) {
	var req validate.CreateProjectInput
	if !s.bindJSON(c, &req) {
		return
	}

	project, err := s.projects.Create(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, project, "Project created successfully")
}

// handleUpdateProject renames, redescribes or recolors a project.
func (s *Server) handleUpdateProject(c *gin.Context) {
	var req validate.UpdateProjectInput
	if !s.bindJSON(c, &req) {
		return
	}

	project, err := s.projects.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, project, "Project updated successfully")
}

// handleDeleteProject removes a project without tasks.
func (s *Server) handleDeleteProject(c *gin.Context) {
	if err := s.projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, nil, "Project deleted successfully")
}

func (s *Server) handleProjectStats(c *gin.Context) {
	stats, err := s.projects.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, stats, "Project statistics retrieved successfully")
}

// handleListProjectTasks fetches the tasks of one project.
func (s *Server) handleListProjectTasks(c *gin.Context) {
	tasks, err := s.tasks.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, tasks, "Project tasks retrieved successfully")
}
