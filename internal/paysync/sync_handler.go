package paysync

import (
	"net/http"
	"time"

	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) SyncJobs(c *gin.Context) {
	companyID := c.GetString("company_id")

	resp, err := h.service.SyncJobsForPeriod(c.Request.Context(), companyID, c.Param("periodId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) SyncClockEvents(c *gin.Context) {
	companyID := c.GetString("company_id")

	var req ClockSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}
	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)

	resp, err := h.service.SyncClockEventsForRange(c.Request.Context(), companyID, start, end)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) SyncMissedDays(c *gin.Context) {
	companyID := c.GetString("company_id")

	resp, err := h.service.SyncMissedWorkDeductions(c.Request.Context(), companyID, c.Param("periodId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) MissingRates(c *gin.Context) {
	companyID := c.GetString("company_id")
	periodID := c.Param("periodId")

	ids, err := h.service.MissingRateEmployeeIDs(c.Request.Context(), companyID, periodID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, MissingRatesResponse{PeriodID: periodID, EmployeeIDs: ids}, nil)
}
