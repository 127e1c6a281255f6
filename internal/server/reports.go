package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetReconciliationReport(c *gin.Context) {
	report, err := s.batch(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rows":     report.Reconciled.Rows,
		"degraded": report.Degraded,
	})
}

func (s *Server) GetRFMReport(c *gin.Context) {
	report, err := s.batch(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rows":     report.RFM.Rows,
		"degraded": report.Degraded,
	})
}

func (s *Server) GetCookReport(c *gin.Context) {
	report, err := s.batch(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rows":     report.Cooks.Rows,
		"degraded": report.Degraded,
	})
}

// GetPairingReport serves the top course pairs. A limit query parameter
// bypasses the cached batch and recomputes with the requested cutoff.
func (s *Server) GetPairingReport(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		report, err := s.batch(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"rows":     report.Pairings.Rows,
			"degraded": report.Degraded,
		})
		return
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be an integer"))
		return
	}
	out, err := s.engine.TopPairs(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": out.Rows})
}

// GetForecastReport serves the revenue projection. A days query
// parameter recomputes with the requested horizon.
func (s *Server) GetForecastReport(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("days"))
	if raw == "" {
		report, err := s.batch(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"rows":     report.Forecast.Rows,
			"degraded": report.Degraded,
		})
		return
	}

	days, err := strconv.Atoi(raw)
	if err != nil {
		AbortWithError(c, newValidationError("days", "invalid_horizon", "days must be an integer"))
		return
	}
	out, err := s.engine.ProjectRevenue(c.Request.Context(), days)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": out.Rows})
}

func (s *Server) GetCoursePopularity(c *gin.Context) {
	report, err := s.batch(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rows":     report.Courses.Popularity,
		"degraded": report.Degraded,
	})
}

func (s *Server) GetCourseComplaints(c *gin.Context) {
	report, err := s.batch(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rows":     report.Courses.ComplaintStats,
		"degraded": report.Degraded,
	})
}

func (s *Server) GetHiddenGems(c *gin.Context) {
	report, err := s.batch(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rows":     report.Courses.HiddenGems,
		"degraded": report.Degraded,
	})
}

func (s *Server) GetDeliveryReport(c *gin.Context) {
	report, err := s.batch(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rows":     report.Deliveries.Rows,
		"degraded": report.Degraded,
	})
}

// GetDiagnostics exposes the per-entity failures isolated during the
// last batch run.
func (s *Server) GetDiagnostics(c *gin.Context) {
	report, err := s.batch(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"diagnostics": report.Diagnostics,
		"degraded":    report.Degraded,
	})
}
