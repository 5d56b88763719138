package services_test

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/abzsd/CareAgents/internal/models"
	"github.com/abzsd/CareAgents/internal/repositories"
)

// mockStore is a func-field test double for services.RecordStore.
// Unset fields panic, which surfaces unexpected calls immediately.
type mockStore struct {
	InsertFunc       func(ctx context.Context, data repositories.Record) (repositories.Record, error)
	InsertManyFunc   func(ctx context.Context, records []repositories.Record) ([]repositories.Record, error)
	FindByIDFunc     func(ctx context.Context, idField string, idValue any) (repositories.Record, error)
	FindAllFunc      func(ctx context.Context, limit, offset int) ([]repositories.Record, error)
	FindByFilterFunc func(ctx context.Context, filters repositories.Record, limit int) ([]repositories.Record, error)
	UpdateFunc       func(ctx context.Context, idField string, idValue any, data repositories.Record) (bool, error)
	DeleteFunc       func(ctx context.Context, idField string, idValue any) (bool, error)
	SoftDeleteFunc   func(ctx context.Context, idField string, idValue any) (bool, error)
	CountFunc        func(ctx context.Context, filters repositories.Record) (int, error)
	SearchFunc       func(ctx context.Context, fields []string, term string, limit int) ([]repositories.Record, error)
	QueryFunc        func(ctx context.Context, query string, args ...any) ([]repositories.Record, error)
}

func (m *mockStore) Insert(ctx context.Context, data repositories.Record) (repositories.Record, error) {
	return m.InsertFunc(ctx, data)
}

func (m *mockStore) InsertMany(ctx context.Context, records []repositories.Record) ([]repositories.Record, error) {
	return m.InsertManyFunc(ctx, records)
}

func (m *mockStore) FindByID(ctx context.Context, idField string, idValue any) (repositories.Record, error) {
	return m.FindByIDFunc(ctx, idField, idValue)
}

func (m *mockStore) FindAll(ctx context.Context, limit, offset int) ([]repositories.Record, error) {
	return m.FindAllFunc(ctx, limit, offset)
}

func (m *mockStore) FindByFilter(ctx context.Context, filters repositories.Record, limit int) ([]repositories.Record, error) {
	return m.FindByFilterFunc(ctx, filters, limit)
}

func (m *mockStore) Update(ctx context.Context, idField string, idValue any, data repositories.Record) (bool, error) {
	return m.UpdateFunc(ctx, idField, idValue, data)
}

func (m *mockStore) Delete(ctx context.Context, idField string, idValue any) (bool, error) {
	return m.DeleteFunc(ctx, idField, idValue)
}

func (m *mockStore) SoftDelete(ctx context.Context, idField string, idValue any) (bool, error) {
	return m.SoftDeleteFunc(ctx, idField, idValue)
}

func (m *mockStore) Count(ctx context.Context, filters repositories.Record) (int, error) {
	return m.CountFunc(ctx, filters)
}

func (m *mockStore) Search(ctx context.Context, fields []string, term string, limit int) ([]repositories.Record, error) {
	return m.SearchFunc(ctx, fields, term, limit)
}

func (m *mockStore) Query(ctx context.Context, query string, args ...any) ([]repositories.Record, error) {
	return m.QueryFunc(ctx, query, args...)
}

// echoStore returns a mockStore whose Insert echoes its input back with
// identity timestamps, the common happy path for create tests.
func echoStore() *mockStore {
	return &mockStore{
		InsertFunc: func(_ context.Context, data repositories.Record) (repositories.Record, error) {
			return data, nil
		},
	}
}

// mockNameCache is a func-field test double for services.NameCache.
type mockNameCache struct {
	GetNameFunc func(ctx context.Context, kind, id string) (string, error)
	SetNameFunc func(ctx context.Context, kind, id, value string) error
}

func (m *mockNameCache) GetName(ctx context.Context, kind, id string) (string, error) {
	return m.GetNameFunc(ctx, kind, id)
}

func (m *mockNameCache) SetName(ctx context.Context, kind, id, value string) error {
	return m.SetNameFunc(ctx, kind, id, value)
}

// mockKafkaWriter records published messages.
type mockKafkaWriter struct {
	messages []kafka.Message
	err      error
}

func (m *mockKafkaWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockKafkaWriter) Close() error { return nil }

// mockJWT is a func-field test double for services.JWTGenerator.
type mockJWT struct {
	GenerateFunc func(ctx context.Context, userID string, role string) (string, error)
}

func (m *mockJWT) Generate(ctx context.Context, userID string, role string) (string, error) {
	return m.GenerateFunc(ctx, userID, role)
}

// mockUserAccounts is a func-field test double for services.UserAccounts.
type mockUserAccounts struct {
	GetFunc           func(ctx context.Context, userID string) (*models.User, error)
	MarkOnboardedFunc func(ctx context.Context, userID string) (bool, error)
}

func (m *mockUserAccounts) Get(ctx context.Context, userID string) (*models.User, error) {
	return m.GetFunc(ctx, userID)
}

func (m *mockUserAccounts) MarkOnboarded(ctx context.Context, userID string) (bool, error) {
	return m.MarkOnboardedFunc(ctx, userID)
}

// mockPatientProfiles is a func-field test double for services.PatientProfiles.
type mockPatientProfiles struct {
	CreateFunc      func(ctx context.Context, in models.PatientCreate) (*models.Patient, error)
	GetByUserIDFunc func(ctx context.Context, userID string) (*models.Patient, error)
}

func (m *mockPatientProfiles) Create(ctx context.Context, in models.PatientCreate) (*models.Patient, error) {
	return m.CreateFunc(ctx, in)
}

func (m *mockPatientProfiles) GetByUserID(ctx context.Context, userID string) (*models.Patient, error) {
	return m.GetByUserIDFunc(ctx, userID)
}

// mockDoctorProfiles is a func-field test double for services.DoctorProfiles.
type mockDoctorProfiles struct {
	CreateFunc      func(ctx context.Context, in models.DoctorCreate) (*models.Doctor, error)
	GetByUserIDFunc func(ctx context.Context, userID string) (*models.Doctor, error)
}

func (m *mockDoctorProfiles) Create(ctx context.Context, in models.DoctorCreate) (*models.Doctor, error) {
	return m.CreateFunc(ctx, in)
}

func (m *mockDoctorProfiles) GetByUserID(ctx context.Context, userID string) (*models.Doctor, error) {
	return m.GetByUserIDFunc(ctx, userID)
}
