package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/Arooshimran/doma-backend/internal/domain"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// VendorRepository implements domain.VendorRepository using SQLite.
type VendorRepository struct {
	db *sql.DB
}

// New opens a SQLite database, runs migrations, and returns a ready repository.
func New(dataSourceName string) (*VendorRepository, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys (off by default in SQLite).
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return NewFromDB(db)
}

// NewFromDB wraps an existing database connection, runs migrations, and
// returns a ready repository. Use this when the *sql.DB has been
// pre-configured (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*VendorRepository, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return &VendorRepository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *VendorRepository) Close() error {
	return r.db.Close()
}

// DB returns the underlying database connection for use by other adapters (e.g., river).
func (r *VendorRepository) DB() *sql.DB {
	return r.db
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

const timeFormat = "2006-01-02T15:04:05Z"

const vendorColumns = `id, email, password_hash, role, store_name, slug, store_description, logo_id,
	phone, address, city, country, business_license, tax_id, business_type,
	status, approved_by, approved_at, approval_note, rejected_by, rejected_at, rejection_reason,
	created_at, updated_at`

func (r *VendorRepository) Create(ctx context.Context, v domain.Vendor) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vendors (`+vendorColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Email, v.PasswordHash, v.Role, v.StoreName, v.Slug, v.StoreDescription, v.LogoID,
		v.Contact.Phone, v.Contact.Address, v.Contact.City, v.Contact.Country,
		v.Business.BusinessLicense, v.Business.TaxID, string(v.Business.BusinessType),
		string(v.Status),
		v.Decision.ApprovedBy, formatTime(v.Decision.ApprovedAt), v.Decision.ApprovalNote,
		v.Decision.RejectedBy, formatTime(v.Decision.RejectedAt), v.Decision.RejectionReason,
		v.CreatedAt.Format(timeFormat), v.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		if conflictErr := asConflict(err, v); conflictErr != nil {
			return conflictErr
		}
		return fmt.Errorf("inserting vendor: %w", err)
	}
	return nil
}

func (r *VendorRepository) GetByID(ctx context.Context, id string) (domain.Vendor, error) {
	return r.scanVendor(r.db.QueryRowContext(ctx,
		`SELECT `+vendorColumns+` FROM vendors WHERE id = ?`, id,
	))
}

func (r *VendorRepository) GetByEmail(ctx context.Context, email string) (domain.Vendor, error) {
	return r.scanVendor(r.db.QueryRowContext(ctx,
		`SELECT `+vendorColumns+` FROM vendors WHERE email = ?`, email,
	))
}

func (r *VendorRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors`
	var args []any

	if filter.Status != nil {
		query += ` WHERE status = ?`
		args = append(args, string(*filter.Status))
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		// SQLite only accepts OFFSET after LIMIT; -1 means no cap.
		query += ` LIMIT -1`
	}

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing vendors: %w", err)
	}
	defer rows.Close()

	var vendors []domain.Vendor
	for rows.Next() {
		v, err := r.scanVendor(rows)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}

	return vendors, rows.Err()
}

// Update persists the profile fields. Status and decision metadata are
// deliberately absent here; those only change through UpdateDecision.
func (r *VendorRepository) Update(ctx context.Context, v domain.Vendor) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE vendors SET store_name = ?, store_description = ?, logo_id = ?,
		 phone = ?, address = ?, city = ?, country = ?,
		 business_license = ?, tax_id = ?, business_type = ?, updated_at = ?
		 WHERE id = ?`,
		v.StoreName, v.StoreDescription, v.LogoID,
		v.Contact.Phone, v.Contact.Address, v.Contact.City, v.Contact.Country,
		v.Business.BusinessLicense, v.Business.TaxID, string(v.Business.BusinessType),
		time.Now().UTC().Format(timeFormat), v.ID,
	)
	if err != nil {
		return fmt.Errorf("updating vendor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrVendorNotFound
	}

	return nil
}

// UpdateDecision persists a status transition guarded by the status the
// caller read: the row only changes when it still carries expected.
// Zero rows affected means a concurrent decision won the race; that is
// reported as swapped=false, not as an error.
func (r *VendorRepository) UpdateDecision(ctx context.Context, v domain.Vendor, expected domain.Status) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE vendors SET status = ?,
		 approved_by = ?, approved_at = ?, approval_note = ?,
		 rejected_by = ?, rejected_at = ?, rejection_reason = ?,
		 updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(v.Status),
		v.Decision.ApprovedBy, formatTime(v.Decision.ApprovedAt), v.Decision.ApprovalNote,
		v.Decision.RejectedBy, formatTime(v.Decision.RejectedAt), v.Decision.RejectionReason,
		time.Now().UTC().Format(timeFormat),
		v.ID, string(expected),
	)
	if err != nil {
		return false, fmt.Errorf("updating vendor decision: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}

	return rows > 0, nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (r *VendorRepository) scanVendor(row scanner) (domain.Vendor, error) {
	var v domain.Vendor
	var status, businessType string
	var approvedAt, rejectedAt, createdAt, updatedAt string

	err := row.Scan(
		&v.ID, &v.Email, &v.PasswordHash, &v.Role, &v.StoreName, &v.Slug, &v.StoreDescription, &v.LogoID,
		&v.Contact.Phone, &v.Contact.Address, &v.Contact.City, &v.Contact.Country,
		&v.Business.BusinessLicense, &v.Business.TaxID, &businessType,
		&status,
		&v.Decision.ApprovedBy, &approvedAt, &v.Decision.ApprovalNote,
		&v.Decision.RejectedBy, &rejectedAt, &v.Decision.RejectionReason,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Vendor{}, domain.ErrVendorNotFound
		}
		return domain.Vendor{}, fmt.Errorf("scanning vendor: %w", err)
	}

	v.Status = domain.Status(status)
	v.Business.BusinessType = domain.BusinessType(businessType)
	v.Decision.ApprovedAt = parseTime(approvedAt)
	v.Decision.RejectedAt = parseTime(rejectedAt)
	v.CreatedAt = parseTime(createdAt)
	v.UpdatedAt = parseTime(updatedAt)

	return v, nil
}

// formatTime renders an optional timestamp; the zero time becomes an
// empty string so unset decision dates stay empty in the row.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeFormat)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(timeFormat, s)
	return t
}

// asConflict maps a SQLite UNIQUE violation to the matching domain
// conflict error, or returns nil when err is something else.
func asConflict(err error, v domain.Vendor) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	if strings.Contains(msg, "vendors.email") {
		return &domain.EmailConflictError{Email: v.Email}
	}
	if strings.Contains(msg, "vendors.slug") {
		return &domain.SlugConflictError{Slug: v.Slug}
	}
	return nil
}
