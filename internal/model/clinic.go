package model

// Clinic represents a tenant: an isolated practice a user can belong to
type Clinic struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`
	Website     string `json:"website,omitempty"`
	OwnerID     string `json:"ownerId,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// ClinicDraft is the payload for creating a clinic
type ClinicDraft struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`
	Website     string `json:"website,omitempty"`
}

// Doctor is a doctor entry as listed for a clinic
type Doctor struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Specialty string `json:"specialty,omitempty"`
}

// DashboardStats is the aggregate snapshot shown on the dashboard
type DashboardStats struct {
	TotalPatients         int     `json:"totalPatients"`
	TodayAppointments     int     `json:"todayAppointments"`
	PendingAppointments   int     `json:"pendingAppointments"`
	CompletedAppointments int     `json:"completedAppointments"`
	RecentPatients        int     `json:"recentPatients"`
	RevenueThisMonth      float64 `json:"revenueThisMonth"`
}
