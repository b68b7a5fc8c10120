package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trl-backend/internal/analysis"
	"trl-backend/internal/database"
	"trl-backend/internal/models"
)

type ProjectsHandler struct {
	dbClient     *database.Client
	orchestrator *analysis.Orchestrator
}

func NewProjectsHandler(dbClient *database.Client, orchestrator *analysis.Orchestrator) *ProjectsHandler {
	return &ProjectsHandler{
		dbClient:     dbClient,
		orchestrator: orchestrator,
	}
}

func projectResponse(p *models.Project) models.ProjectResponse {
	resp := models.ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Description.Valid {
		resp.Description = p.Description.String
	}
	return resp
}

// CreateProject godoc
// @Summary     Create a project
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ProjectRequest true "Project data"
// @Success     200 {object} models.ProjectResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /projects [post]
func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	project := &models.Project{
		UserID: userID,
		Name:   req.Name,
	}
	if req.Description != "" {
		project.Description = sql.NullString{String: req.Description, Valid: true}
	}

	saved, err := h.dbClient.CreateProject(project)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create project",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, projectResponse(saved))
}

// ListProjects godoc
// @Summary     List the authenticated user's projects
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ProjectListResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /projects [get]
func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	projects, err := h.dbClient.ListProjects(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list projects",
			Message: err.Error(),
		})
		return
	}

	responses := make([]models.ProjectResponse, len(projects))
	for i := range projects {
		responses[i] = projectResponse(&projects[i])
	}

	c.JSON(http.StatusOK, models.ProjectListResponse{Projects: responses})
}

// GetProject godoc
// @Summary     Get a project
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path int true "Project ID"
// @Success     200 {object} models.ProjectResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id} [get]
func (h *ProjectsHandler) GetProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	project, err := h.dbClient.GetProject(projectID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "project not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, projectResponse(project))
}

// UpdateProject godoc
// @Summary     Update a project
// @Tags        projects
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       project_id path int true "Project ID"
// @Param       request body models.ProjectRequest true "Project data"
// @Success     200 {object} models.ProjectResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id} [put]
func (h *ProjectsHandler) UpdateProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	var req models.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	project, err := h.dbClient.UpdateProject(projectID, userID, req.Name, req.Description)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "project not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, projectResponse(project))
}

// DeleteProject godoc
// @Summary     Delete a project
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path int true "Project ID"
// @Success     200 {object} map[string]string
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id} [delete]
func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	if err := h.dbClient.DeleteProject(projectID, userID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "project not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}

// AnalyzeProject godoc
// @Summary     Run project-level analysis
// @Description Starts the project analysis worker in the background. On success a PDF report is archived for the project. Poll the analysis state or the report list for the outcome.
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path int true "Project ID"
// @Success     202 {object} models.AnalysisRunResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /projects/{project_id}/analyze [post]
func (h *ProjectsHandler) AnalyzeProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	if _, err := h.dbClient.GetProject(projectID, userID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "project not found",
			Message: err.Error(),
		})
		return
	}

	if err := h.orchestrator.TriggerProjectAnalysis(projectID); err != nil {
		if errors.Is(err, analysis.ErrAlreadyRunning) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:   "analysis already in progress",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to start analysis",
			Message: err.Error(),
		})
		return
	}

	state, _ := h.orchestrator.RunState(analysis.ProjectKey(projectID))
	c.JSON(http.StatusAccepted, runResponse(state))
}

// GetAnalysisState godoc
// @Summary     Get the state of the latest project analysis run
// @Tags        projects
// @Produce     json
// @Security    Bearer
// @Param       project_id path int true "Project ID"
// @Success     200 {object} models.AnalysisRunResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id}/analysis [get]
func (h *ProjectsHandler) GetAnalysisState(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	if _, err := h.dbClient.GetProject(projectID, userID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "project not found",
			Message: err.Error(),
		})
		return
	}

	state, found := h.orchestrator.RunState(analysis.ProjectKey(projectID))
	if !found {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no analysis run for this project"})
		return
	}

	c.JSON(http.StatusOK, runResponse(state))
}

func runResponse(state analysis.RunState) models.AnalysisRunResponse {
	resp := models.AnalysisRunResponse{
		Key:       state.Key,
		Status:    state.Status,
		Error:     state.Error,
		StartedAt: state.StartedAt,
	}
	if !state.FinishedAt.IsZero() {
		t := state.FinishedAt
		resp.FinishedAt = &t
	}
	return resp
}
