package handlers

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"trl-backend/internal/database"
	"trl-backend/internal/models"
	"trl-backend/internal/supabase"
)

type EvidencesHandler struct {
	dbClient      *database.Client
	storageClient *supabase.StorageClient
}

func NewEvidencesHandler(dbClient *database.Client, storageClient *supabase.StorageClient) *EvidencesHandler {
	return &EvidencesHandler{
		dbClient:      dbClient,
		storageClient: storageClient,
	}
}

// storageReady rejects requests that need blob storage when the server was
// started without Supabase credentials. Listing still works: it only reads
// the database.
func (h *EvidencesHandler) storageReady(c *gin.Context) bool {
	if h.storageClient == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "evidence storage is not configured",
			Message: "set SUPABASE_URL and SUPABASE_KEY to enable evidence uploads",
		})
		return false
	}
	return true
}

func evidenceResponse(e *models.Evidence) models.EvidenceResponse {
	resp := models.EvidenceResponse{
		ID:          e.ID,
		ProjectID:   e.ProjectID,
		Filename:    e.Filename,
		ContentType: e.ContentType,
		StorageURL:  e.StorageURL,
		CreatedAt:   e.CreatedAt,
	}
	if e.Description.Valid {
		resp.Description = e.Description.String
	}
	return resp
}

// Upload godoc
// @Summary     Upload evidence files for a project
// @Description Uploads one or more files to blob storage and records them against the project. Files are uploaded concurrently.
// @Tags        evidences
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       project_id path int true "Project ID"
// @Param       files formData file true "Evidence files (multiple allowed)"
// @Param       description formData string false "Description applied to all files"
// @Success     200 {object} models.EvidenceListResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /projects/{project_id}/evidences [post]
func (h *EvidencesHandler) Upload(c *gin.Context) {
	if !h.storageReady(c) {
		return
	}

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

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	form := c.Request.MultipartForm
	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no files uploaded",
			Message: "please provide files under the 'files' form field",
		})
		return
	}

	description := c.PostForm("description")

	var mu sync.Mutex
	saved := make([]models.EvidenceResponse, 0, len(files))

	var g errgroup.Group
	for _, fileHeader := range files {
		fileHeader := fileHeader
		g.Go(func() error {
			src, err := fileHeader.Open()
			if err != nil {
				return fmt.Errorf("%s: failed to open: %w", fileHeader.Filename, err)
			}
			data, err := io.ReadAll(src)
			src.Close()
			if err != nil {
				return fmt.Errorf("%s: failed to read: %w", fileHeader.Filename, err)
			}

			contentType := fileHeader.Header.Get("Content-Type")
			if contentType == "" {
				contentType = "application/octet-stream"
			}

			storagePath, storageURL, err := h.storageClient.UploadEvidence(projectID, fileHeader.Filename, contentType, data)
			if err != nil {
				return fmt.Errorf("%s: %w", fileHeader.Filename, err)
			}

			evidence := &models.Evidence{
				ProjectID:   projectID,
				Filename:    fileHeader.Filename,
				ContentType: contentType,
				StoragePath: storagePath,
				StorageURL:  storageURL,
			}
			if description != "" {
				evidence.Description = sql.NullString{String: description, Valid: true}
			}

			record, err := h.dbClient.CreateEvidence(evidence)
			if err != nil {
				return fmt.Errorf("%s: uploaded but not recorded: %w", fileHeader.Filename, err)
			}

			mu.Lock()
			saved = append(saved, evidenceResponse(record))
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to upload evidences",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.EvidenceListResponse{Evidences: saved})
}

// List godoc
// @Summary     List evidence files for a project
// @Tags        evidences
// @Produce     json
// @Security    Bearer
// @Param       project_id path int true "Project ID"
// @Success     200 {object} models.EvidenceListResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id}/evidences [get]
func (h *EvidencesHandler) List(c *gin.Context) {
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

	evidences, err := h.dbClient.ListEvidencesByProject(projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list evidences",
			Message: err.Error(),
		})
		return
	}

	responses := make([]models.EvidenceResponse, len(evidences))
	for i := range evidences {
		responses[i] = evidenceResponse(&evidences[i])
	}

	c.JSON(http.StatusOK, models.EvidenceListResponse{Evidences: responses})
}

// Delete godoc
// @Summary     Delete an evidence file
// @Description Removes the stored object and its record
// @Tags        evidences
// @Produce     json
// @Security    Bearer
// @Param       project_id path int true "Project ID"
// @Param       evidence_id path int true "Evidence ID"
// @Success     200 {object} map[string]string
// @Failure     404 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /projects/{project_id}/evidences/{evidence_id} [delete]
func (h *EvidencesHandler) Delete(c *gin.Context) {
	if !h.storageReady(c) {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	evidenceID, ok := pathID(c, "evidence_id")
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

	evidence, err := h.dbClient.GetEvidence(evidenceID)
	if err != nil || evidence.ProjectID != projectID {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "evidence not found"})
		return
	}

	if err := h.storageClient.DeleteFile(evidence.StoragePath); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete stored file",
			Message: err.Error(),
		})
		return
	}

	if err := h.dbClient.DeleteEvidence(evidenceID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete evidence record",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "evidence deleted"})
}
