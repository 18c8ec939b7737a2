package model

import (
	"time"

	"github.com/google/uuid"
)

type LabReportStatus string

const (
	LabReportStatusPending    LabReportStatus = "PENDING"
	LabReportStatusInProgress LabReportStatus = "IN_PROGRESS"
	LabReportStatusCompleted  LabReportStatus = "COMPLETED"
)

var labReportTransitions = map[LabReportStatus][]LabReportStatus{
	LabReportStatusPending:    {LabReportStatusInProgress, LabReportStatusCompleted},
	LabReportStatusInProgress: {LabReportStatusCompleted},
}

func (s LabReportStatus) CanTransitionTo(next LabReportStatus) bool {
	for _, allowed := range labReportTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// LabReport tracks a test from order to result. ConductedBy is set whenever
// the status leaves PENDING.
type LabReport struct {
	Base
	PatientID   uuid.UUID       `json:"patientId" db:"patient_id"`
	TestName    string          `json:"testName" db:"test_name"`
	TestType    string          `json:"testType" db:"test_type"`
	Status      LabReportStatus `json:"status" db:"status"`
	Results     *string         `json:"results,omitempty" db:"results"`
	FileKey     *string         `json:"-" db:"file_key"`
	FileName    *string         `json:"fileName,omitempty" db:"file_name"`
	Remarks     *string         `json:"remarks,omitempty" db:"remarks"`
	ConductedBy *uuid.UUID      `json:"conductedBy,omitempty" db:"conducted_by"`
	ReportDate  *time.Time      `json:"reportDate,omitempty" db:"report_date"`
}

func (r *LabReport) HasFile() bool {
	return r.FileKey != nil && *r.FileKey != ""
}

type LabReportView struct {
	LabReport
	Patient         PersonRef `json:"patient" db:"patient"`
	ConductedByName *string   `json:"conductedByName,omitempty" db:"conducted_by_name"`
}

type LabReportFilter struct {
	Status      []LabReportStatus
	PatientID   *uuid.UUID
	TestType    string
	ConductedBy *uuid.UUID
	OldestFirst bool
}

type CreateLabReportRequest struct {
	PatientID uuid.UUID `json:"patientId" binding:"required"`
	TestName  string    `json:"testName" binding:"required,max=200"`
	TestType  string    `json:"testType" binding:"required,max=100"`
	Remarks   *string   `json:"remarks"`
}

// UpdateLabReportRequest arrives as JSON, or as multipart form fields when a
// result file is attached.
type UpdateLabReportRequest struct {
	Status     *LabReportStatus `json:"status" form:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
	Results    *string          `json:"results" form:"results"`
	Remarks    *string          `json:"remarks" form:"remarks"`
	ReportDate *Date            `json:"reportDate" form:"reportDate"`
}

// UploadedFile is a validated file ready to be stored
type UploadedFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     []byte
}

type DownloadLink struct {
	DownloadURL string `json:"downloadUrl"`
	FileName    string `json:"fileName"`
	ExpiresIn   int    `json:"expiresIn"`
}
