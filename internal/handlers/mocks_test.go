package handlers_test

import (
	"context"

	"github.com/abzsd/CareAgents/internal/agents"
	"github.com/abzsd/CareAgents/internal/models"
)

// Func-field test doubles for the handler-side service interfaces.

type mockPatientService struct {
	CreateFunc func(ctx context.Context, in models.PatientCreate) (*models.Patient, error)
	GetFunc    func(ctx context.Context, patientID string) (*models.Patient, error)
	UpdateFunc func(ctx context.Context, patientID string, in models.PatientUpdate) (*models.Patient, error)
	DeleteFunc func(ctx context.Context, patientID string) (bool, error)
	ListFunc   func(ctx context.Context, page, pageSize int, activeOnly bool) (*models.PatientPage, error)
	SearchFunc func(ctx context.Context, term string, limit int) ([]models.Patient, error)
}

func (m *mockPatientService) Create(ctx context.Context, in models.PatientCreate) (*models.Patient, error) {
	return m.CreateFunc(ctx, in)
}

func (m *mockPatientService) Get(ctx context.Context, patientID string) (*models.Patient, error) {
	return m.GetFunc(ctx, patientID)
}

func (m *mockPatientService) Update(ctx context.Context, patientID string, in models.PatientUpdate) (*models.Patient, error) {
	return m.UpdateFunc(ctx, patientID, in)
}

func (m *mockPatientService) Delete(ctx context.Context, patientID string) (bool, error) {
	return m.DeleteFunc(ctx, patientID)
}

func (m *mockPatientService) List(ctx context.Context, page, pageSize int, activeOnly bool) (*models.PatientPage, error) {
	return m.ListFunc(ctx, page, pageSize, activeOnly)
}

func (m *mockPatientService) Search(ctx context.Context, term string, limit int) ([]models.Patient, error) {
	return m.SearchFunc(ctx, term, limit)
}

type mockAppointmentService struct {
	CreateFunc        func(ctx context.Context, in models.AppointmentCreate) (*models.Appointment, error)
	GetFunc           func(ctx context.Context, appointmentID string) (*models.Appointment, error)
	UpdateFunc        func(ctx context.Context, appointmentID string, in models.AppointmentUpdate) (*models.Appointment, error)
	CancelFunc        func(ctx context.Context, appointmentID string) (*models.Appointment, error)
	DeleteFunc        func(ctx context.Context, appointmentID string) (bool, error)
	ListByPatientFunc func(ctx context.Context, patientID string, page, pageSize int, status *models.AppointmentStatus) (*models.AppointmentPage, error)
	ListByDoctorFunc  func(ctx context.Context, doctorID string, page, pageSize int, status *models.AppointmentStatus, date string) (*models.AppointmentPage, error)
	UpcomingCountFunc func(ctx context.Context, patientID string) (int, error)
	TodayCountFunc    func(ctx context.Context, doctorID string) (int, error)
}

func (m *mockAppointmentService) Create(ctx context.Context, in models.AppointmentCreate) (*models.Appointment, error) {
	return m.CreateFunc(ctx, in)
}

func (m *mockAppointmentService) Get(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	return m.GetFunc(ctx, appointmentID)
}

func (m *mockAppointmentService) Update(ctx context.Context, appointmentID string, in models.AppointmentUpdate) (*models.Appointment, error) {
	return m.UpdateFunc(ctx, appointmentID, in)
}

func (m *mockAppointmentService) Cancel(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	return m.CancelFunc(ctx, appointmentID)
}

func (m *mockAppointmentService) Delete(ctx context.Context, appointmentID string) (bool, error) {
	return m.DeleteFunc(ctx, appointmentID)
}

func (m *mockAppointmentService) ListByPatient(ctx context.Context, patientID string, page, pageSize int, status *models.AppointmentStatus) (*models.AppointmentPage, error) {
	return m.ListByPatientFunc(ctx, patientID, page, pageSize, status)
}

func (m *mockAppointmentService) ListByDoctor(ctx context.Context, doctorID string, page, pageSize int, status *models.AppointmentStatus, date string) (*models.AppointmentPage, error) {
	return m.ListByDoctorFunc(ctx, doctorID, page, pageSize, status, date)
}

func (m *mockAppointmentService) UpcomingCount(ctx context.Context, patientID string) (int, error) {
	return m.UpcomingCountFunc(ctx, patientID)
}

func (m *mockAppointmentService) TodayCount(ctx context.Context, doctorID string) (int, error) {
	return m.TodayCountFunc(ctx, doctorID)
}

type mockUserService struct {
	RegisterFunc func(ctx context.Context, in models.UserCreate) (*models.User, error)
	LoginFunc    func(ctx context.Context, email, password string) (string, *models.User, error)
	GetFunc      func(ctx context.Context, userID string) (*models.User, error)
	UpdateFunc   func(ctx context.Context, userID string, in models.UserUpdate) (*models.User, error)
}

func (m *mockUserService) Register(ctx context.Context, in models.UserCreate) (*models.User, error) {
	return m.RegisterFunc(ctx, in)
}

func (m *mockUserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	return m.LoginFunc(ctx, email, password)
}

func (m *mockUserService) Get(ctx context.Context, userID string) (*models.User, error) {
	return m.GetFunc(ctx, userID)
}

func (m *mockUserService) Update(ctx context.Context, userID string, in models.UserUpdate) (*models.User, error) {
	return m.UpdateFunc(ctx, userID, in)
}

type mockOnboardingService struct {
	OnboardPatientFunc func(ctx context.Context, userID string, in models.PatientCreate) (*models.Patient, error)
	OnboardDoctorFunc  func(ctx context.Context, userID string, in models.DoctorCreate) (*models.Doctor, error)
	StatusFunc         func(ctx context.Context, userID string) (*models.OnboardingStatus, error)
}

func (m *mockOnboardingService) OnboardPatient(ctx context.Context, userID string, in models.PatientCreate) (*models.Patient, error) {
	return m.OnboardPatientFunc(ctx, userID, in)
}

func (m *mockOnboardingService) OnboardDoctor(ctx context.Context, userID string, in models.DoctorCreate) (*models.Doctor, error) {
	return m.OnboardDoctorFunc(ctx, userID, in)
}

func (m *mockOnboardingService) Status(ctx context.Context, userID string) (*models.OnboardingStatus, error) {
	return m.StatusFunc(ctx, userID)
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockMatcher struct {
	matches []agents.DoctorMatch
	err     error
}

func (m *mockMatcher) Match(_ context.Context, _ string) ([]agents.DoctorMatch, error) {
	return m.matches, m.err
}

type mockSummarizer struct {
	summary string
	err     error
}

func (m *mockSummarizer) Summarize(_ context.Context, _ string) (string, error) {
	return m.summary, m.err
}

type mockHistoryService struct {
	CreateFunc        func(ctx context.Context, in models.MedicalRecordCreate) (*models.MedicalRecord, error)
	GetFunc           func(ctx context.Context, historyID string) (*models.MedicalRecord, error)
	ListByPatientFunc func(ctx context.Context, patientID string, page, pageSize int) (*models.MedicalRecordPage, error)
	UpdateFunc        func(ctx context.Context, historyID string, in models.MedicalRecordUpdate) (*models.MedicalRecord, error)
	DeleteFunc        func(ctx context.Context, historyID string) (bool, error)
	SearchFunc        func(ctx context.Context, term string, limit int) ([]models.MedicalRecord, error)
}

func (m *mockHistoryService) Create(ctx context.Context, in models.MedicalRecordCreate) (*models.MedicalRecord, error) {
	return m.CreateFunc(ctx, in)
}

func (m *mockHistoryService) Get(ctx context.Context, historyID string) (*models.MedicalRecord, error) {
	return m.GetFunc(ctx, historyID)
}

func (m *mockHistoryService) ListByPatient(ctx context.Context, patientID string, page, pageSize int) (*models.MedicalRecordPage, error) {
	return m.ListByPatientFunc(ctx, patientID, page, pageSize)
}

func (m *mockHistoryService) Update(ctx context.Context, historyID string, in models.MedicalRecordUpdate) (*models.MedicalRecord, error) {
	return m.UpdateFunc(ctx, historyID, in)
}

func (m *mockHistoryService) Delete(ctx context.Context, historyID string) (bool, error) {
	return m.DeleteFunc(ctx, historyID)
}

func (m *mockHistoryService) Search(ctx context.Context, term string, limit int) ([]models.MedicalRecord, error) {
	return m.SearchFunc(ctx, term, limit)
}

type mockVitalsService struct {
	CreateFunc        func(ctx context.Context, in models.VitalSignsCreate) (*models.VitalSigns, error)
	GetFunc           func(ctx context.Context, vitalID string) (*models.VitalSigns, error)
	ListByPatientFunc func(ctx context.Context, patientID string, page, pageSize int) (*models.VitalSignsPage, error)
	LatestFunc        func(ctx context.Context, patientID string) (*models.VitalSigns, error)
	UpdateFunc        func(ctx context.Context, vitalID string, in models.VitalSignsUpdate) (*models.VitalSigns, error)
	DeleteFunc        func(ctx context.Context, vitalID string) (bool, error)
}

func (m *mockVitalsService) Create(ctx context.Context, in models.VitalSignsCreate) (*models.VitalSigns, error) {
	return m.CreateFunc(ctx, in)
}

func (m *mockVitalsService) Get(ctx context.Context, vitalID string) (*models.VitalSigns, error) {
	return m.GetFunc(ctx, vitalID)
}

func (m *mockVitalsService) ListByPatient(ctx context.Context, patientID string, page, pageSize int) (*models.VitalSignsPage, error) {
	return m.ListByPatientFunc(ctx, patientID, page, pageSize)
}

func (m *mockVitalsService) Latest(ctx context.Context, patientID string) (*models.VitalSigns, error) {
	return m.LatestFunc(ctx, patientID)
}

func (m *mockVitalsService) Update(ctx context.Context, vitalID string, in models.VitalSignsUpdate) (*models.VitalSigns, error) {
	return m.UpdateFunc(ctx, vitalID, in)
}

func (m *mockVitalsService) Delete(ctx context.Context, vitalID string) (bool, error) {
	return m.DeleteFunc(ctx, vitalID)
}
