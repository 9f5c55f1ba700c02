package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/fitlab-service/internal/domain"
)

// UserFilter captures admin listing parameters.
type UserFilter struct {
	Search *string
	Role   *domain.Role
	Limit  int
	Offset int
}

// UserStats holds the headline counters for the admin dashboard.
type UserStats struct {
	TotalUsers         int
	FitnessEnthusiasts int
	Trainers           int
	LabPartners        int
	PendingApprovals   int
}

// RoleCount is a per-role aggregate.
type RoleCount struct {
	Role  domain.Role
	Count int
}

// MonthlyRoleCount is the number of signups for a role in a calendar month.
type MonthlyRoleCount struct {
	Year  int
	Month int
	Role  domain.Role
	Count int
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListPendingApprovals(ctx context.Context) ([]domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, int, error)
	ListApproved(ctx context.Context, role domain.Role, search *string) ([]domain.User, error)
	GetApproved(ctx context.Context, role domain.Role, id string) (*domain.User, error)
	SetOfferedTests(ctx context.Context, userID string, testIDs []string) error
	Stats(ctx context.Context) (UserStats, error)
	CountByRole(ctx context.Context) ([]RoleCount, error)
	MonthlySignups(ctx context.Context, since time.Time) ([]MonthlyRoleCount, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, phone, age, is_active, is_approved,
        approval_status, approved_by, approved_at, is_suspended, suspension_reason, suspended_at,
        specialization, years_of_experience, laboratory_name, laboratory_address,
        offered_tests::text[], created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, phone, age, is_active, is_approved,
            approval_status, specialization, years_of_experience, laboratory_name, laboratory_address)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`

	return conn(ctx, r.pool).QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Phone,
		user.Age,
		user.IsActive,
		user.IsApproved,
		user.ApprovalStatus,
		user.Specialization,
		user.YearsOfExperience,
		user.LaboratoryName,
		user.LaboratoryAddress,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, phone=$2, age=$3, is_active=$4, is_approved=$5, approval_status=$6,
            approved_by=$7, approved_at=$8, is_suspended=$9, suspension_reason=$10, suspended_at=$11,
            specialization=$12, years_of_experience=$13, laboratory_name=$14, laboratory_address=$15,
            updated_at=NOW()
        WHERE id=$16
        RETURNING updated_at`

	err := conn(ctx, r.pool).QueryRow(ctx, query,
		user.Name,
		user.Phone,
		user.Age,
		user.IsActive,
		user.IsApproved,
		user.ApprovalStatus,
		user.ApprovedBy,
		user.ApprovedAt,
		user.IsSuspended,
		user.SuspensionReason,
		user.SuspendedAt,
		user.Specialization,
		user.YearsOfExperience,
		user.LaboratoryName,
		user.LaboratoryAddress,
		user.ID,
	).Scan(&user.UpdatedAt)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email)=LOWER($1)`
	return scanUser(conn(ctx, r.pool).QueryRow(ctx, query, email))
}

func (r *userRepository) ListPendingApprovals(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
        WHERE approval_status=$1 AND role IN ($2, $3)
        ORDER BY created_at ASC`
	rows, err := conn(ctx, r.pool).Query(ctx, query, domain.ApprovalPending, domain.RoleTrainer, domain.RoleLabPartner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, int, error) {
	where, args := buildUserFilter(filter)
	db := conn(ctx, r.pool)

	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		userColumns, where, limit, offset)
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users, err := scanUsers(rows)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// buildUserFilter renders the WHERE clause shared by the count and page queries.
func buildUserFilter(filter UserFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(strings.TrimSpace(*filter.Search)))+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(name) LIKE %s OR LOWER(email) LIKE %s)", placeholder, placeholder))
	}
	return strings.Join(clauses, " AND "), args
}

func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

func (r *userRepository) ListApproved(ctx context.Context, role domain.Role, search *string) ([]domain.User, error) {
	clauses := []string{"role=$1", "is_approved=TRUE", "approval_status=$2", "is_active=TRUE"}
	args := []any{role, domain.ApprovalApproved}

	if search != nil && strings.TrimSpace(*search) != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(strings.TrimSpace(*search)))+"%")
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(name) LIKE %s OR LOWER(laboratory_name) LIKE %s OR LOWER(laboratory_address) LIKE %s)", p, p, p))
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY name ASC`, userColumns, strings.Join(clauses, " AND "))
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *userRepository) GetApproved(ctx context.Context, role domain.Role, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
        WHERE id=$1 AND role=$2 AND is_approved=TRUE AND approval_status=$3 AND is_active=TRUE`
	return scanUser(conn(ctx, r.pool).QueryRow(ctx, query, id, role, domain.ApprovalApproved))
}

func (r *userRepository) SetOfferedTests(ctx context.Context, userID string, testIDs []string) error {
	if testIDs == nil {
		testIDs = []string{}
	}
	cmd, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE users SET offered_tests=$1::uuid[], updated_at=NOW() WHERE id=$2`, testIDs, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) Stats(ctx context.Context) (UserStats, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE role=$1),
               COUNT(*) FILTER (WHERE role=$2),
               COUNT(*) FILTER (WHERE role=$3),
               COUNT(*) FILTER (WHERE approval_status=$4)
        FROM users`
	var stats UserStats
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		domain.RoleFitnessEnthusiast, domain.RoleTrainer, domain.RoleLabPartner, domain.ApprovalPending,
	).Scan(&stats.TotalUsers, &stats.FitnessEnthusiasts, &stats.Trainers, &stats.LabPartners, &stats.PendingApprovals)
	return stats, err
}

func (r *userRepository) CountByRole(ctx context.Context) ([]RoleCount, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role ORDER BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RoleCount
	for rows.Next() {
		var rc RoleCount
		if err := rows.Scan(&rc.Role, &rc.Count); err != nil {
			return nil, err
		}
		result = append(result, rc)
	}
	return result, rows.Err()
}

func (r *userRepository) MonthlySignups(ctx context.Context, since time.Time) ([]MonthlyRoleCount, error) {
	const query = `
        SELECT EXTRACT(YEAR FROM created_at AT TIME ZONE 'UTC')::int AS y,
               EXTRACT(MONTH FROM created_at AT TIME ZONE 'UTC')::int AS m,
               role, COUNT(*)
        FROM users
        WHERE created_at >= $1
        GROUP BY y, m, role
        ORDER BY y, m`
	rows, err := conn(ctx, r.pool).Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MonthlyRoleCount
	for rows.Next() {
		var mc MonthlyRoleCount
		if err := rows.Scan(&mc.Year, &mc.Month, &mc.Role, &mc.Count); err != nil {
			return nil, err
		}
		result = append(result, mc)
	}
	return result, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(userDest(&user)...); err != nil {
		return nil, err
	}
	return &user, nil
}

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(userDest(&user)...); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func userDest(user *domain.User) []any {
	return []any{
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Phone,
		&user.Age,
		&user.IsActive,
		&user.IsApproved,
		&user.ApprovalStatus,
		&user.ApprovedBy,
		&user.ApprovedAt,
		&user.IsSuspended,
		&user.SuspensionReason,
		&user.SuspendedAt,
		&user.Specialization,
		&user.YearsOfExperience,
		&user.LaboratoryName,
		&user.LaboratoryAddress,
		&user.OfferedTests,
		&user.CreatedAt,
		&user.UpdatedAt,
	}
}
