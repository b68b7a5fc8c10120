package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"trl-backend/internal/database"
	"trl-backend/internal/models"
)

type ReportsHandler struct {
	dbClient *database.Client
}

func NewReportsHandler(dbClient *database.Client) *ReportsHandler {
	return &ReportsHandler{
		dbClient: dbClient,
	}
}

// ListProjectReports godoc
// @Summary     List reports for a project
// @Description Returns report summaries (no file bytes) for one project
// @Tags        reports
// @Produce     json
// @Security    Bearer
// @Param       project_id path int true "Project ID"
// @Success     200 {object} models.ReportListResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /reports/project/{project_id} [get]
func (h *ReportsHandler) ListProjectReports(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	projectID, ok := pathID(c, "project_id")
	if !ok {
		return
	}

	reports, err := h.dbClient.ListReportsByProject(projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list reports",
			Message: err.Error(),
		})
		return
	}

	summaries := make([]models.ReportSummary, len(reports))
	for i, report := range reports {
		summaries[i] = models.ReportSummary{
			ID:        report.ID,
			ProjectID: report.ProjectID,
			Filename:  report.Filename,
			CreatedAt: report.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, models.ReportListResponse{Reports: summaries})
}

// DownloadReport godoc
// @Summary     Download a report
// @Description Streams the stored PDF bytes as an attachment
// @Tags        reports
// @Produce     application/pdf
// @Security    Bearer
// @Param       report_id path int true "Report ID"
// @Success     200 {file} binary
// @Failure     404 {object} models.ErrorResponse
// @Router      /reports/{report_id}/download [get]
func (h *ReportsHandler) DownloadReport(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	reportID, ok := pathID(c, "report_id")
	if !ok {
		return
	}

	report, err := h.dbClient.GetReport(reportID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "report not found",
			Message: err.Error(),
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Data(http.StatusOK, report.ContentType, report.Data)
}
