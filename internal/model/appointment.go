package model

// AppointmentStatus is the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "SCHEDULED"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
)

// Appointment represents a scheduled visit
type Appointment struct {
	ID          string            `json:"id"`
	PatientID   string            `json:"patientId"`
	DoctorID    string            `json:"doctorId"`
	PatientName string            `json:"patientName,omitempty"`
	DoctorName  string            `json:"doctorName,omitempty"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Duration    int               `json:"duration"`
	Type        string            `json:"type,omitempty"`
	Status      AppointmentStatus `json:"status"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   string            `json:"createdAt,omitempty"`
}
