package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hospital-admin-dashboard/internal/handlers"
	"hospital-admin-dashboard/internal/middleware"
	"hospital-admin-dashboard/internal/models"
)

// Dependencies are the handlers and settings the router is built from.
type Dependencies struct {
	Appointments *handlers.AppointmentHandler
	Doctors      *handlers.DoctorHandler
	// Audit is nil when the audit store is disabled.
	Audit    *handlers.AuditHandler
	Gatherer prometheus.Gatherer
	// JWTSecret enables token checks on /api/v1 when set.
	JWTSecret string
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")
	adminOnly := []gin.HandlerFunc{}
	if deps.JWTSecret != "" {
		api.Use(middleware.AuthMiddleware(deps.JWTSecret))
		adminOnly = append(adminOnly, middleware.RoleAuthMiddleware(models.RoleAdmin))
	}

	appointmentHandler := deps.Appointments
	appointmentRoutes := api.Group("/appointments")
	{
		appointmentRoutes.GET("", appointmentHandler.ListAppointments)
		appointmentRoutes.GET("/export", appointmentHandler.ExportAppointments)
		appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
		appointmentRoutes.POST("/reload", appointmentHandler.ReloadAppointments)
		appointmentRoutes.POST("/sweep", append(adminOnly, appointmentHandler.SweepAppointments)...)

		appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
		appointmentRoutes.GET("/:id/print", appointmentHandler.PrintAppointment)
		appointmentRoutes.GET("/:id/edit", appointmentHandler.GetEditForm)
		appointmentRoutes.PUT("/:id", appointmentHandler.UpdateAppointment)
		appointmentRoutes.POST("/:id/approve", appointmentHandler.ApproveAppointment)
		appointmentRoutes.POST("/:id/cancel", appointmentHandler.CancelAppointment)
		appointmentRoutes.PUT("/:id/mode", appointmentHandler.SetRowMode)
	}

	viewRoutes := api.Group("/view")
	{
		viewRoutes.GET("", appointmentHandler.GetView)
		viewRoutes.PUT("/filters", appointmentHandler.SetFilters)
		viewRoutes.DELETE("/filters", appointmentHandler.ResetFilters)
	}

	api.GET("/doctors", deps.Doctors.GetDoctors)

	if deps.Audit != nil {
		api.GET("/audit", append(adminOnly, deps.Audit.GetAuditEntries)...)
	}
}
