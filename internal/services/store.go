package services

import (
	"context"

	"github.com/abzsd/CareAgents/internal/repositories"
)

// RecordStore is the generic repository surface every entity service
// consumes. Satisfied by repositories.RecordRepository.
type RecordStore interface {
	Insert(ctx context.Context, data repositories.Record) (repositories.Record, error)
	InsertMany(ctx context.Context, records []repositories.Record) ([]repositories.Record, error)
	FindByID(ctx context.Context, idField string, idValue any) (repositories.Record, error)
	FindAll(ctx context.Context, limit, offset int) ([]repositories.Record, error)
	FindByFilter(ctx context.Context, filters repositories.Record, limit int) ([]repositories.Record, error)
	Update(ctx context.Context, idField string, idValue any, data repositories.Record) (bool, error)
	Delete(ctx context.Context, idField string, idValue any) (bool, error)
	SoftDelete(ctx context.Context, idField string, idValue any) (bool, error)
	Count(ctx context.Context, filters repositories.Record) (int, error)
	Search(ctx context.Context, fields []string, term string, limit int) ([]repositories.Record, error)
	Query(ctx context.Context, query string, args ...any) ([]repositories.Record, error)
}
