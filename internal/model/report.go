package model

import (
	"time"
)

type ReportType string

const (
	ReportTypeSummary      ReportType = "summary"
	ReportTypePatients     ReportType = "patients"
	ReportTypeRevenue      ReportType = "revenue"
	ReportTypeAppointments ReportType = "appointments"
	ReportTypeLabReports   ReportType = "lab-reports"
)

var reportTitles = map[ReportType]string{
	ReportTypeSummary:      "Hospital Summary Report",
	ReportTypePatients:     "Patient Report",
	ReportTypeRevenue:      "Revenue Report",
	ReportTypeAppointments: "Appointments Report",
	ReportTypeLabReports:   "Lab Reports Summary",
}

// Title returns the display title and whether the type is known.
func (t ReportType) Title() (string, bool) {
	title, ok := reportTitles[t]
	return title, ok
}

// DateRange bounds aggregation queries. The range is only applied when both
// ends are present; End is inclusive of its whole day.
type DateRange struct {
	Start *Date
	End   *Date
}

func (r DateRange) Bounded() bool {
	return r.Start != nil && r.End != nil
}

// Bounds returns [start, day after end).
func (r DateRange) Bounds() (time.Time, time.Time) {
	_, end := r.End.Range()
	return r.Start.Time, end
}

func (r DateRange) String() string {
	if !r.Bounded() {
		return "All time"
	}
	return r.Start.String() + " to " + r.End.String()
}

type DashboardStats struct {
	TotalPatients         int `json:"totalPatients" db:"total_patients"`
	TotalDoctors          int `json:"totalDoctors" db:"total_doctors"`
	TotalAppointments     int `json:"totalAppointments" db:"total_appointments"`
	TodayAppointments     int `json:"todayAppointments" db:"today_appointments"`
	PendingLabReports     int `json:"pendingLabReports" db:"pending_lab_reports"`
	CompletedAppointments int `json:"completedAppointments" db:"completed_appointments"`
}

type DoctorStats struct {
	TotalPatients     int `json:"totalPatients" db:"total_patients"`
	TotalAppointments int `json:"totalAppointments" db:"total_appointments"`
	PendingLabReports int `json:"pendingLabReports" db:"pending_lab_reports"`
	TodayAppointments int `json:"todayAppointments" db:"today_appointments"`
}

type DoctorDashboard struct {
	Stats             DoctorStats       `json:"stats"`
	TodayAppointments []AppointmentView `json:"todayAppointments"`
	AssignedPatients  []AssignedPatient `json:"assignedPatients"`
}

// GroupCount is one row of a GROUP BY count
type GroupCount struct {
	Key   string `json:"key" db:"key"`
	Count int    `json:"count" db:"count"`
}

type RevenueByStatus struct {
	Status BillingStatus `json:"status" db:"status"`
	Count  int           `json:"count" db:"count"`
	Total  float64       `json:"total" db:"total"`
	Paid   float64       `json:"paid" db:"paid"`
}

type RevenueSummary struct {
	Total    float64           `json:"total"`
	Paid     float64           `json:"paid"`
	Pending  float64           `json:"pending"`
	ByStatus []RevenueByStatus `json:"byStatus"`
}

type PatientSummary struct {
	Total    int          `json:"total"`
	New      int          `json:"new"`
	ByGender []GroupCount `json:"byGender"`
}

type DoctorBreakdown struct {
	Total            int          `json:"total"`
	BySpecialization []GroupCount `json:"bySpecialization"`
}

type StatusSummary struct {
	Total     int          `json:"total"`
	Completed int          `json:"completed"`
	ByStatus  []GroupCount `json:"byStatus"`
}

type UserSummary struct {
	Active int          `json:"active"`
	ByRole []GroupCount `json:"byRole"`
}

type SummaryReport struct {
	Patients     PatientSummary  `json:"patients"`
	Doctors      DoctorBreakdown `json:"doctors"`
	Appointments StatusSummary   `json:"appointments"`
	LabReports   StatusSummary   `json:"labReports"`
	Revenue      RevenueSummary  `json:"revenue"`
	Treatments   struct {
		Total int `json:"total"`
	} `json:"treatments"`
	Users UserSummary `json:"users"`
}

// ReportData is the payload behind the printable report endpoint
type ReportData struct {
	ReportType  ReportType  `json:"reportType"`
	Title       string      `json:"title"`
	GeneratedAt time.Time   `json:"generatedAt"`
	GeneratedBy string      `json:"generatedBy"`
	DateRange   string      `json:"dateRange"`
	Data        interface{} `json:"data"`
}
