package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abzsd/CareAgents/internal/models"
	"github.com/abzsd/CareAgents/internal/repositories"
	"github.com/abzsd/CareAgents/internal/services"
)

func TestVitalsService_Create(t *testing.T) {
	store := echoStore()
	svc := services.NewVitalsService(store)

	pain := 3
	vitals, err := svc.Create(context.Background(), models.VitalSignsCreate{
		PatientID:        "p-1",
		RecordedBy:       "d-1",
		Height:           &models.Measurement{Value: 175, Unit: "cm"},
		Weight:           &models.Measurement{Value: 70, Unit: "kg"},
		BloodPressure:    &models.BloodPressureReading{Systolic: 120, Diastolic: 80},
		HeartRateBPM:     72,
		OxygenSaturation: 98,
		HealthStatus:     models.HealthGood,
		PainLevel:        &pain,
	})
	require.NoError(t, err)
	require.NotNil(t, vitals)

	assert.NotEmpty(t, vitals.VitalID)
	assert.Equal(t, "p-1", vitals.PatientID)
	assert.Equal(t, 72, vitals.HeartRateBPM)
	assert.Equal(t, models.HealthGood, vitals.HealthStatus)
	require.NotNil(t, vitals.BloodPressure)
	assert.Equal(t, 120, vitals.BloodPressure.Systolic)
	assert.True(t, vitals.IsActive)
}

func TestVitalsService_Create_RangeValidation(t *testing.T) {
	badPain := 11
	tests := []struct {
		name string
		in   models.VitalSignsCreate
	}{
		{
			name: "heart rate too high",
			in:   models.VitalSignsCreate{PatientID: "p-1", HeartRateBPM: 400},
		},
		{
			name: "respiratory rate too low",
			in:   models.VitalSignsCreate{PatientID: "p-1", RespiratoryRate: 2},
		},
		{
			name: "oxygen saturation above 100",
			in:   models.VitalSignsCreate{PatientID: "p-1", OxygenSaturation: 101},
		},
		{
			name: "pain level off the scale",
			in:   models.VitalSignsCreate{PatientID: "p-1", PainLevel: &badPain},
		},
		{
			name: "systolic pressure implausible",
			in: models.VitalSignsCreate{
				PatientID:     "p-1",
				BloodPressure: &models.BloodPressureReading{Systolic: 20, Diastolic: 80},
			},
		},
		{
			name: "diastolic pressure implausible",
			in: models.VitalSignsCreate{
				PatientID:     "p-1",
				BloodPressure: &models.BloodPressureReading{Systolic: 120, Diastolic: 10},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inserted := false
			store := &mockStore{
				InsertFunc: func(_ context.Context, data repositories.Record) (repositories.Record, error) {
					inserted = true
					return data, nil
				},
			}
			svc := services.NewVitalsService(store)

			vitals, err := svc.Create(context.Background(), tt.in)
			require.ErrorIs(t, err, models.ErrValidation)
			assert.Nil(t, vitals)
			assert.False(t, inserted)
		})
	}
}

func TestVitalsService_ListByPatient(t *testing.T) {
	store := &mockStore{
		QueryFunc: func(_ context.Context, query string, args ...any) ([]repositories.Record, error) {
			assert.Contains(t, query, "ORDER BY created_at DESC")
			assert.Equal(t, []any{"p-1", 10, 10}, args)
			return []repositories.Record{
				{"vital_id": "v-1", "patient_id": "p-1", "heart_rate_bpm": 70, "is_active": true},
				{"vital_id": "v-2", "patient_id": "p-1", "heart_rate_bpm": 75, "is_active": true},
			}, nil
		},
		CountFunc: func(_ context.Context, filters repositories.Record) (int, error) {
			assert.Equal(t, "p-1", filters["patient_id"])
			assert.Equal(t, true, filters["is_active"])
			return 12, nil
		},
	}
	svc := services.NewVitalsService(store)

	page, err := svc.ListByPatient(context.Background(), "p-1", 2, 10)
	require.NoError(t, err)
	require.NotNil(t, page)

	assert.Len(t, page.Vitals, 2)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 2, page.TotalPages)
}

func TestVitalsService_Latest(t *testing.T) {
	t.Run("most recent reading", func(t *testing.T) {
		store := &mockStore{
			QueryFunc: func(_ context.Context, query string, args ...any) ([]repositories.Record, error) {
				assert.Contains(t, query, "LIMIT 1")
				assert.Equal(t, []any{"p-1"}, args)
				return []repositories.Record{
					{"vital_id": "v-9", "patient_id": "p-1", "oxygen_saturation": 97.5, "is_active": true},
				}, nil
			},
		}
		svc := services.NewVitalsService(store)

		vitals, err := svc.Latest(context.Background(), "p-1")
		require.NoError(t, err)
		require.NotNil(t, vitals)
		assert.Equal(t, "v-9", vitals.VitalID)
		assert.Equal(t, 97.5, vitals.OxygenSaturation)
	})

	t.Run("no readings recorded", func(t *testing.T) {
		store := &mockStore{
			QueryFunc: func(_ context.Context, _ string, _ ...any) ([]repositories.Record, error) {
				return nil, nil
			},
		}
		svc := services.NewVitalsService(store)

		vitals, err := svc.Latest(context.Background(), "p-x")
		require.NoError(t, err)
		assert.Nil(t, vitals)
	})
}

func TestVitalsService_Update(t *testing.T) {
	var gotUpdate repositories.Record
	store := &mockStore{
		UpdateFunc: func(_ context.Context, idField string, idValue any, data repositories.Record) (bool, error) {
			assert.Equal(t, "vital_id", idField)
			assert.Equal(t, "v-1", idValue)
			gotUpdate = data
			return true, nil
		},
		FindByIDFunc: func(_ context.Context, _ string, _ any) (repositories.Record, error) {
			return repositories.Record{"vital_id": "v-1", "heart_rate_bpm": 80, "is_active": true}, nil
		},
	}
	svc := services.NewVitalsService(store)

	heartRate := 80
	vitals, err := svc.Update(context.Background(), "v-1", models.VitalSignsUpdate{HeartRateBPM: &heartRate})
	require.NoError(t, err)
	require.NotNil(t, vitals)

	assert.Equal(t, 80, gotUpdate["heart_rate_bpm"])
	assert.NotContains(t, gotUpdate, "notes")
	assert.Equal(t, 80, vitals.HeartRateBPM)
}

func TestVitalsService_Update_RejectsOutOfRange(t *testing.T) {
	svc := services.NewVitalsService(&mockStore{})

	heartRate := 10
	vitals, err := svc.Update(context.Background(), "v-1", models.VitalSignsUpdate{HeartRateBPM: &heartRate})
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Nil(t, vitals)
}

func TestVitalsService_Delete(t *testing.T) {
	store := &mockStore{
		SoftDeleteFunc: func(_ context.Context, idField string, idValue any) (bool, error) {
			assert.Equal(t, "vital_id", idField)
			return idValue == "v-1", nil
		},
	}
	svc := services.NewVitalsService(store)

	ok, err := svc.Delete(context.Background(), "v-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Delete(context.Background(), "v-404")
	require.NoError(t, err)
	assert.False(t, ok)
}
