package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/legalnest/backend/internal/model"
)

// MySQLSubmissionsRepository stores each collection in its own table
// (contacts, enquiries). The id is the table's AUTO_INCREMENT key.
type MySQLSubmissionsRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewMySQLSubmissionsRepository(db *sqlx.DB) *MySQLSubmissionsRepository {
	return &MySQLSubmissionsRepository{db: db, now: time.Now}
}

var _ SubmissionsRepository = (*MySQLSubmissionsRepository)(nil)

// Append inserts a row and reads the generated id back from LastInsertId.
func (r *MySQLSubmissionsRepository) Append(ctx context.Context, collection string, s model.Submission) (model.Submission, error) {
	kind, err := kindOf(collection)
	if err != nil {
		return model.Submission{}, err
	}
	s = stamp(s, kind, "", r.now().Truncate(time.Millisecond))

	// collection is allow-listed by kindOf, safe to use as table name
	q := fmt.Sprintf(`
		INSERT INTO %s
		    (name, email, phone, message, service, city, details, status, created_at)
		VALUES
		    (?,    ?,     ?,     ?,       ?,       ?,    ?,       ?,      ?)
	`, collection)

	res, err := r.db.ExecContext(ctx, q,
		s.Name, s.Email, s.Phone, s.Message, s.Service, s.City, s.Details, s.Status.String(), s.CreatedAt,
	)
	if err != nil {
		return model.Submission{}, fmt.Errorf("insert %s: %w", collection, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Submission{}, fmt.Errorf("insert %s: last insert id: %w", collection, err)
	}
	s.ID = strconv.FormatInt(id, 10)
	return s, nil
}

func (r *MySQLSubmissionsRepository) List(ctx context.Context, collection string) ([]model.Submission, error) {
	kind, err := kindOf(collection)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		SELECT id, name, email, phone, message, service, city, details, status, created_at
		FROM %s
		ORDER BY created_at DESC, id DESC
	`, collection)

	rows := []model.Submission{}
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	for i := range rows {
		rows[i].Kind = kind
	}
	return rows, nil
}

// Migrate runs schema statements in order inside one connection.
func (r *MySQLSubmissionsRepository) Migrate(ctx context.Context, stmts []string) error {
	conn, err := r.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	for i, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d: %w", i+1, err)
		}
	}
	return nil
}

func (r *MySQLSubmissionsRepository) Mode() Mode   { return ModeMySQL }
func (r *MySQLSubmissionsRepository) Close() error { return r.db.Close() }
