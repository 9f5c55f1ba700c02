package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/fitlab-service/internal/domain"
)

// LabTestRepository encapsulates catalog persistence.
type LabTestRepository interface {
	Create(ctx context.Context, test *domain.LabTest) error
	Update(ctx context.Context, test *domain.LabTest) error
	Delete(ctx context.Context, ownerID, id string) error
	GetOwned(ctx context.Context, ownerID, id string) (*domain.LabTest, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.LabTest, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.LabTest, error)
	CountOwned(ctx context.Context, ownerID string, ids []string) (int, error)
	// LockByIDs loads tests with a shared row lock; it must run inside a transaction.
	LockByIDs(ctx context.Context, ids []string) ([]domain.LabTest, error)
}

type labTestRepository struct {
	pool *pgxpool.Pool
}

// NewLabTestRepository instantiates repository.
func NewLabTestRepository(pool *pgxpool.Pool) LabTestRepository {
	return &labTestRepository{pool: pool}
}

const labTestColumns = `id, lab_partner_id, test_name, description, price, duration, category,
        preparation_instructions, is_active, created_at, updated_at`

func (r *labTestRepository) Create(ctx context.Context, test *domain.LabTest) error {
	const query = `
        INSERT INTO lab_tests (lab_partner_id, test_name, description, price, duration, category,
            preparation_instructions, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		test.LabPartnerID,
		test.TestName,
		test.Description,
		test.Price,
		test.Duration,
		test.Category,
		test.PreparationInstructions,
		test.IsActive,
	).Scan(&test.ID, &test.CreatedAt, &test.UpdatedAt)
}

func (r *labTestRepository) Update(ctx context.Context, test *domain.LabTest) error {
	const query = `
        UPDATE lab_tests SET test_name=$1, description=$2, price=$3, duration=$4, category=$5,
            preparation_instructions=$6, is_active=$7, updated_at=NOW()
        WHERE id=$8 AND lab_partner_id=$9
        RETURNING updated_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		test.TestName,
		test.Description,
		test.Price,
		test.Duration,
		test.Category,
		test.PreparationInstructions,
		test.IsActive,
		test.ID,
		test.LabPartnerID,
	).Scan(&test.UpdatedAt)
}

func (r *labTestRepository) Delete(ctx context.Context, ownerID, id string) error {
	cmd, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM lab_tests WHERE id=$1 AND lab_partner_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *labTestRepository) GetOwned(ctx context.Context, ownerID, id string) (*domain.LabTest, error) {
	query := `SELECT ` + labTestColumns + ` FROM lab_tests WHERE id=$1 AND lab_partner_id=$2`
	var test domain.LabTest
	if err := conn(ctx, r.pool).QueryRow(ctx, query, id, ownerID).Scan(labTestDest(&test)...); err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *labTestRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.LabTest, error) {
	query := `SELECT ` + labTestColumns + ` FROM lab_tests WHERE lab_partner_id=$1 ORDER BY created_at DESC`
	return r.query(ctx, query, ownerID)
}

func (r *labTestRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.LabTest, error) {
	if len(ids) == 0 {
		return []domain.LabTest{}, nil
	}
	query := `SELECT ` + labTestColumns + ` FROM lab_tests WHERE id = ANY($1::uuid[])`
	return r.query(ctx, query, ids)
}

func (r *labTestRepository) CountOwned(ctx context.Context, ownerID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM lab_tests WHERE lab_partner_id=$1 AND id = ANY($2::uuid[])`, ownerID, ids,
	).Scan(&count)
	return count, err
}

func (r *labTestRepository) LockByIDs(ctx context.Context, ids []string) ([]domain.LabTest, error) {
	if len(ids) == 0 {
		return []domain.LabTest{}, nil
	}
	query := `SELECT ` + labTestColumns + ` FROM lab_tests WHERE id = ANY($1::uuid[]) FOR SHARE`
	return r.query(ctx, query, ids)
}

func (r *labTestRepository) query(ctx context.Context, query string, args ...any) ([]domain.LabTest, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.LabTest
	for rows.Next() {
		var test domain.LabTest
		if err := rows.Scan(labTestDest(&test)...); err != nil {
			return nil, err
		}
		result = append(result, test)
	}
	return result, rows.Err()
}

func labTestDest(test *domain.LabTest) []any {
	return []any{
		&test.ID,
		&test.LabPartnerID,
		&test.TestName,
		&test.Description,
		&test.Price,
		&test.Duration,
		&test.Category,
		&test.PreparationInstructions,
		&test.IsActive,
		&test.CreatedAt,
		&test.UpdatedAt,
	}
}
