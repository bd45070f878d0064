package models

// AuditAction names a recorded dashboard action.
type AuditAction string

const (
	AuditApprove AuditAction = "approve"
	AuditUpdate  AuditAction = "update"
	AuditCancel  AuditAction = "cancel"
	AuditCreate  AuditAction = "create"
	AuditSweep   AuditAction = "sweep"
)

// AuditEntry records one mutation or sweep run against the hospital API.
type AuditEntry struct {
	BaseModel
	Action        AuditAction `gorm:"size:20;index" json:"action"`
	AppointmentID string      `gorm:"size:64;index" json:"appointmentId,omitempty"`
	Actor         string      `gorm:"size:64" json:"actor,omitempty"`
	Success       bool        `json:"success"`
	Detail        string      `gorm:"type:text" json:"detail,omitempty"`
	Candidates    int         `json:"candidates,omitempty"`
	Cancelled     int         `json:"cancelled,omitempty"`
	Failed        int         `json:"failed,omitempty"`
}
