package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/senelec/reclamations-api/internal/domain"
)

// AccountFilter defines query params for account listing.
type AccountFilter struct {
	Role   *domain.Role
	Active *bool
	Limit  int
	Offset int
}

// AccountRepository defines persistence access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	// Update writes profile fields, role and is_active, then reloads account.
	// Credentials and last login are only written by the narrow methods below.
	// Moving a technician with assigned tickets to another role fails with
	// ErrTechnicianAssigned.
	Update(ctx context.Context, account *domain.Account) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	// SetPassword stores a user chosen hash and completes onboarding.
	SetPassword(ctx context.Context, id, hash string) error
	// IssueTempPassword stores fresh temp credentials unless a temp password
	// is already pending, in which case it returns false.
	IssueTempPassword(ctx context.Context, id, plain, hash string) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	List(ctx context.Context, filter AccountFilter) ([]domain.Account, error)
	CountByRole(ctx context.Context) (map[domain.Role]int64, error)
	// Delete removes the account, its submitted tickets, and detaches it
	// from tickets it was assigned to.
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}

type accountRepository struct {
	pool TxBeginner
	now  Clock
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool TxBeginner, clock Clock) AccountRepository {
	return &accountRepository{pool: pool, now: clockOrDefault(clock)}
}

const accountColumns = `id, username, email, phone, last_name, first_name, address, meter_number, role,
               password_hash, is_first_login, temp_password, is_active, last_login_at, created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (username, email, phone, last_name, first_name, address, meter_number, role,
            password_hash, is_first_login, temp_password, is_active, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$13)
        RETURNING id, created_at, updated_at`

	if account.Username == "" {
		account.Username = account.Email
	}
	err := r.pool.QueryRow(ctx, query,
		account.Username,
		account.Email,
		account.Phone,
		account.LastName,
		account.FirstName,
		account.Address,
		account.MeterNumber,
		account.Role,
		account.PasswordHash,
		account.IsFirstLogin,
		account.TempPassword,
		account.IsActive,
		r.now(),
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	return mapPgError(err)
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	const query = `
        UPDATE accounts SET username=$1, email=$2, phone=$3, last_name=$4, first_name=$5, address=$6,
            meter_number=$7, role=$8, is_active=$9, updated_at=$10
        WHERE id=$11
        RETURNING ` + accountColumns

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		stored, err := scanAccount(tx.QueryRow(ctx, query,
			account.Username,
			account.Email,
			account.Phone,
			account.LastName,
			account.FirstName,
			account.Address,
			account.MeterNumber,
			account.Role,
			account.IsActive,
			r.now(),
			account.ID,
		))
		if err != nil {
			return err
		}
		// The row lock taken above orders this check against assignments,
		// which read the role FOR SHARE.
		if stored.Role != domain.RoleTechnician {
			var assigned bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM reclamations WHERE technician_id=$1)`, stored.ID).Scan(&assigned); err != nil {
				return err
			}
			if assigned {
				return ErrTechnicianAssigned
			}
		}
		*account = *stored
		return nil
	})
	return mapPgError(err)
}

func (r *accountRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.execOne(ctx, `UPDATE accounts SET last_login_at=$1 WHERE id=$2`, at, id)
}

func (r *accountRepository) SetPassword(ctx context.Context, id, hash string) error {
	return r.execOne(ctx, `
        UPDATE accounts SET password_hash=$1, temp_password='', is_first_login=FALSE, updated_at=$2
        WHERE id=$3`, hash, r.now(), id)
}

func (r *accountRepository) IssueTempPassword(ctx context.Context, id, plain, hash string) (bool, error) {
	err := r.execOne(ctx, `
        UPDATE accounts SET password_hash=$1, temp_password=$2, is_first_login=TRUE, updated_at=$3
        WHERE id=$4 AND temp_password=''`, hash, plain, r.now(), id)
	if !errors.Is(err, ErrNotFound) {
		return err == nil, err
	}
	found, err := r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id=$1)`, id)
	if err != nil {
		return false, err
	}
	if !found {
		return false, ErrNotFound
	}
	return false, nil
}

func (r *accountRepository) execOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.fetchSingle(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.fetchSingle(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email=$1`, email)
}

func (r *accountRepository) GetByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	return r.fetchSingle(ctx, `SELECT `+accountColumns+` FROM accounts WHERE phone=$1`, phone)
}

func (r *accountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email=$1)`, email)
}

func (r *accountRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE phone=$1)`, phone)
}

func (r *accountRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var found bool
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&found); err != nil {
		return false, mapPgError(err)
	}
	return found, nil
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Account, error) {
	account, err := scanAccount(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, mapPgError(err)
	}
	return account, nil
}

func (r *accountRepository) List(ctx context.Context, filter AccountFilter) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var result []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *account)
	}
	return result, rows.Err()
}

func (r *accountRepository) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT role, COUNT(*) FROM accounts GROUP BY role`)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	counts := make(map[domain.Role]int64, len(domain.Roles))
	for rows.Next() {
		var (
			role  domain.Role
			count int64
		)
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		counts[role] = count
	}
	return counts, rows.Err()
}

func (r *accountRepository) Delete(ctx context.Context, id string) error {
	now := r.now()
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE reclamations SET technician_id=NULL, updated_at=$2 WHERE technician_id=$1`, id, now); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM reclamations WHERE account_id=$1`, id); err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	return mapPgError(err)
}

func (r *accountRepository) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM reclamations`); err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM accounts`)
		if err != nil {
			return err
		}
		deleted = cmd.RowsAffected()
		return nil
	})
	return deleted, mapPgError(err)
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.Phone,
		&account.LastName,
		&account.FirstName,
		&account.Address,
		&account.MeterNumber,
		&account.Role,
		&account.PasswordHash,
		&account.IsFirstLogin,
		&account.TempPassword,
		&account.IsActive,
		&account.LastLoginAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}
