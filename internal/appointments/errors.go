package appointments

import "hospital-admin-dashboard/internal/apiclient"

// Client-side rejections. None of these reach the network.
var (
	ErrSerialRequired   = apiclient.Validation("approve", "Serial number is required")
	ErrNotFound         = apiclient.Validation("lookup", "Appointment not found")
	ErrAlreadyCancelled = apiclient.Validation("cancel", "Appointment is already cancelled")
	ErrRowBusy          = apiclient.Validation("mutate", "Another action is in progress for this appointment")
	ErrModeConflict     = apiclient.Validation("mode", "Close the open editor for this appointment first")
	ErrInvalidMode      = apiclient.Validation("mode", "Unknown row mode")
)
