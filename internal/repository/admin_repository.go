package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retainhq/retain-backend/internal/model"
)

var (
	ErrDuplicateEmail = errors.New("college admin with this email already exists")
	ErrHasStudents    = errors.New("college admin still owns students")
)

const adminColumns = `id, name, email, phone, college_name, department, position, is_active, password_hash, created_at, updated_at`

// AdminRepository handles college admin data access.
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepository.
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func scanAdmin(row interface{ Scan(...any) error }) (*model.CollegeAdmin, error) {
	a := &model.CollegeAdmin{}
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.CollegeName, &a.Department,
		&a.Position, &a.IsActive, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves a college admin by ID.
func (r *AdminRepository) GetByID(ctx context.Context, id int) (*model.CollegeAdmin, error) {
	return scanAdmin(r.pool.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM college_admins WHERE id = $1`, id))
}

// GetByEmail retrieves a college admin by their unique email.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*model.CollegeAdmin, error) {
	return scanAdmin(r.pool.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM college_admins WHERE email = $1`, email))
}

// ListPaginated retrieves admins with pagination, optional active filter and
// name/email/college/department substring search.
func (r *AdminRepository) ListPaginated(ctx context.Context, active *bool, search string, limit, offset int) ([]model.CollegeAdmin, int, error) {
	where := ``
	var args []any
	argIdx := 1

	if active != nil {
		where = ` WHERE is_active = $1`
		args = append(args, *active)
		argIdx++
	}
	if search != "" {
		if where == "" {
			where = ` WHERE `
		} else {
			where += ` AND `
		}
		p := `$` + strconv.Itoa(argIdx)
		where += `(name ILIKE ` + p + ` OR email ILIKE ` + p + ` OR college_name ILIKE ` + p + ` OR department ILIKE ` + p + `)`
		args = append(args, "%"+search+"%")
		argIdx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM college_admins`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + adminColumns + ` FROM college_admins` + where +
		` ORDER BY name LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var admins []model.CollegeAdmin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, 0, err
		}
		admins = append(admins, *a)
	}
	return admins, total, rows.Err()
}

// ListActive retrieves all active admins ordered by name (for dropdowns).
func (r *AdminRepository) ListActive(ctx context.Context) ([]model.CollegeAdmin, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+adminColumns+` FROM college_admins WHERE is_active = TRUE ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []model.CollegeAdmin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, *a)
	}
	return admins, rows.Err()
}

// Create inserts a new college admin.
func (r *AdminRepository) Create(ctx context.Context, a *model.CollegeAdmin) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO college_admins (name, email, phone, college_name, department, position, is_active, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		a.Name, a.Email, a.Phone, a.CollegeName, a.Department, a.Position, a.IsActive, a.PasswordHash,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// Update modifies a college admin's details.
func (r *AdminRepository) Update(ctx context.Context, a *model.CollegeAdmin) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE college_admins
		 SET name = $1, email = $2, phone = $3, college_name = $4, department = $5,
		     position = $6, is_active = $7, password_hash = $8, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $9`,
		a.Name, a.Email, a.Phone, a.CollegeName, a.Department, a.Position, a.IsActive, a.PasswordHash, a.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
	}
	return err
}

// Delete removes a college admin. Admins still owning students are rejected
// rather than cascading away their records.
func (r *AdminRepository) Delete(ctx context.Context, id int) error {
	var hasStudents bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM students WHERE college_admin_id = $1)`, id,
	).Scan(&hasStudents)
	if err != nil {
		return err
	}
	if hasStudents {
		return ErrHasStudents
	}

	_, err = r.pool.Exec(ctx, `DELETE FROM college_admins WHERE id = $1`, id)
	return err
}

// GetStatistics aggregates an admin's students by their latest prediction.
func (r *AdminRepository) GetStatistics(ctx context.Context, adminID int) (*model.AdminStatistics, error) {
	stats := &model.AdminStatistics{}
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE lp.prediction_result = 'safe'),
			COUNT(*) FILTER (WHERE lp.prediction_result = 'at_risk'),
			COUNT(*) FILTER (WHERE lp.prediction_result = 'dropout'),
			COUNT(*) FILTER (WHERE lp.prediction_result IS NULL)
		FROM students s
		LEFT JOIN LATERAL (
			SELECT prediction_result FROM predictions p
			WHERE p.student_id = s.id
			ORDER BY p.created_at DESC LIMIT 1
		) lp ON TRUE
		WHERE s.college_admin_id = $1`,
		adminID,
	).Scan(&stats.TotalStudents, &stats.SafeStudents, &stats.AtRiskStudents, &stats.DropoutStudents, &stats.Unassessed)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
