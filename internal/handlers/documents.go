package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"trl-backend/internal/database"
	"trl-backend/internal/models"
	"trl-backend/internal/services"
)

type DocumentsHandler struct {
	dbClient *database.Client
	ingest   *services.IngestionService
}

func NewDocumentsHandler(dbClient *database.Client, ingest *services.IngestionService) *DocumentsHandler {
	return &DocumentsHandler{
		dbClient: dbClient,
		ingest:   ingest,
	}
}

// Analyze godoc
// @Summary     Submit a document for readiness analysis
// @Description Stores the uploaded file, records it as PENDING and starts the analysis in the background. Poll the document for the outcome.
// @Tags        trl
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       file formData file true "Document to analyze"
// @Success     200 {object} models.DocumentResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /trl/analyze [post]
func (h *DocumentsHandler) Analyze(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no file uploaded",
			Message: "please provide a file under the 'file' form field",
		})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to open file",
			Message: err.Error(),
		})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read file",
			Message: err.Error(),
		})
		return
	}

	doc, err := h.ingest.Ingest(data, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to ingest document",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.FromDocument(doc))
}

// ListDocuments godoc
// @Summary     List documents
// @Description Returns all documents, optionally filtered by lifecycle status
// @Tags        trl
// @Produce     json
// @Security    Bearer
// @Param       status query string false "Filter by status (PENDING, PROCESSING, COMPLETED, FAILED)"
// @Success     200 {object} models.DocumentListResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /trl/documents [get]
func (h *DocumentsHandler) ListDocuments(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	var docs []models.Document
	var err error
	if status := c.Query("status"); status != "" {
		docs, err = h.dbClient.ListDocumentsByStatus(status)
	} else {
		docs, err = h.dbClient.ListDocuments()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list documents",
			Message: err.Error(),
		})
		return
	}

	responses := make([]models.DocumentResponse, len(docs))
	for i := range docs {
		responses[i] = models.FromDocument(&docs[i])
	}

	c.JSON(http.StatusOK, models.DocumentListResponse{Documents: responses})
}

// GetDocument godoc
// @Summary     Get a document
// @Description Returns one document with its current lifecycle status
// @Tags        trl
// @Produce     json
// @Security    Bearer
// @Param       document_id path int true "Document ID"
// @Success     200 {object} models.DocumentResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /trl/documents/{document_id} [get]
func (h *DocumentsHandler) GetDocument(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	id, ok := pathID(c, "document_id")
	if !ok {
		return
	}

	doc, err := h.dbClient.GetDocument(id)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "document not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.FromDocument(doc))
}
