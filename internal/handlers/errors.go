package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"hospital-admin-dashboard/internal/apiclient"
	"hospital-admin-dashboard/internal/appointments"
	"hospital-admin-dashboard/internal/utils"
)

// respondError writes err in the standard envelope. The message follows
// apiclient.Message: server or validation text, then the network notice,
// then fallback.
func respondError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)
	msg := apiclient.Message(err, fallback)

	switch {
	case errors.Is(err, appointments.ErrNotFound):
		utils.NotFound(c, msg)
	case errors.Is(err, appointments.ErrRowBusy),
		errors.Is(err, appointments.ErrModeConflict),
		errors.Is(err, appointments.ErrAlreadyCancelled):
		utils.Conflict(c, msg)
	case apiclient.IsKind(err, apiclient.KindValidation):
		utils.BadRequest(c, msg)
	case apiclient.IsKind(err, apiclient.KindServer):
		utils.BadGateway(c, msg)
	case apiclient.IsKind(err, apiclient.KindNetwork):
		utils.ServiceUnavailable(c, msg)
	default:
		utils.InternalServerError(c, fallback)
	}
}
