package booking

import (
	"context"

	"github.com/google/uuid"
)

// PatientRecords receives visit bookkeeping events from the ledger. Failures
// are logged by the caller and never fail the booking itself.
type PatientRecords interface {
	OnAppointmentCreated(ctx context.Context, appt Appointment) error
	OnAppointmentCompleted(ctx context.Context, appt Appointment) error
}

// Notifier is told about every committed status change so the counterpart
// party can be informed. Failures never fail the status update.
type Notifier interface {
	AppointmentStatusChanged(ctx context.Context, appt Appointment, oldStatus Status, actorID uuid.UUID) error
}

// NopPatientRecords is used when no records subsystem is wired in.
type NopPatientRecords struct{}

func (NopPatientRecords) OnAppointmentCreated(context.Context, Appointment) error   { return nil }
func (NopPatientRecords) OnAppointmentCompleted(context.Context, Appointment) error { return nil }
