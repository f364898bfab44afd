package model

// Patient represents a patient record scoped to a clinic
type Patient struct {
	ID               string   `json:"id"`
	FirstName        string   `json:"firstName"`
	LastName         string   `json:"lastName"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone"`
	DateOfBirth      string   `json:"dateOfBirth"`
	Gender           string   `json:"gender"`
	Address          string   `json:"address"`
	EmergencyContact string   `json:"emergencyContact,omitempty"`
	MedicalHistory   []string `json:"medicalHistory,omitempty"`
	Allergies        []string `json:"allergies,omitempty"`
	CreatedAt        string   `json:"createdAt,omitempty"`
	UpdatedAt        string   `json:"updatedAt,omitempty"`
}

// MedicalRecord is a single visit entry in a patient's history
type MedicalRecord struct {
	ID           string   `json:"id"`
	PatientID    string   `json:"patientId"`
	DoctorID     string   `json:"doctorId"`
	Date         string   `json:"date"`
	Diagnosis    string   `json:"diagnosis"`
	Symptoms     []string `json:"symptoms,omitempty"`
	Treatment    string   `json:"treatment,omitempty"`
	Prescription []string `json:"prescription,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	FollowUpDate string   `json:"followUpDate,omitempty"`
}
