package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fjod/go_cart/ecommerce-service/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	sqlitedriver "modernc.org/sqlite"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"

	// SQLite's built-in LOWER only folds ASCII.
	sqliteLowerFunc = "unicode_lower"
)

func init() {
	sqlitedriver.MustRegisterDeterministicScalarFunction(sqliteLowerFunc, 1, unicodeLower)
}

func unicodeLower(_ *sqlitedriver.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// Repository implements CartRepository and ContactRepository on top of
// database/sql. Queries are written to run unchanged on Postgres and SQLite.
type Repository struct {
	db     *sql.DB
	driver string
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open(driverPostgres, psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db, driver: driverPostgres}, nil
}

// NewSQLiteRepository opens a SQLite database at path (":memory:" for a
// throwaway one). The pool is limited to one connection so an in-memory
// database is shared by every query.
func NewSQLiteRepository(path string) (*Repository, error) {
	db, err := sql.Open(driverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &Repository{db: db, driver: driverSQLite}, nil
}

// RunMigrations applies the migrations found in the driver's subdirectory of
// migrationsPath.
func (r *Repository) RunMigrations(migrationsPath string) error {
	var (
		driver database.Driver
		err    error
	)
	switch r.driver {
	case driverPostgres:
		driver, err = postgres.WithInstance(r.db, &postgres.Config{
			MigrationsTable: "ecommerce_schema_migrations",
		})
	case driverSQLite:
		driver, err = sqlite.WithInstance(r.db, &sqlite.Config{})
	default:
		err = fmt.Errorf("unsupported driver %q", r.driver)
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", filepath.Join(migrationsPath, r.driver)),
		r.driver,
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) GetCartItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	query := `
		SELECT c.product_id, p.name, SUM(c.quantity)
		FROM carts c
		JOIN products p ON p.id = c.product_id
		WHERE c.cart_id = $1
		GROUP BY c.product_id, p.name
		HAVING SUM(c.quantity) > 0
		ORDER BY c.product_id
	`

	rows, err := r.db.QueryContext(ctx, query, cartID.String())
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0)
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// AddCartLine appends a line to the cart, filling in line.ID and line.CreatedAt.
func (r *Repository) AddCartLine(ctx context.Context, line *domain.Cart) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`,
		line.ProductID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return ErrProductNotFound
	}

	line.CreatedAt = time.Now().UTC()
	err = tx.QueryRowContext(ctx,
		`INSERT INTO carts (cart_id, product_id, quantity, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		line.CartID.String(),
		line.ProductID,
		line.Quantity,
		line.CreatedAt).Scan(&line.ID)
	if err != nil {
		return fmt.Errorf("insert cart line: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cart line: %w", err)
	}
	return nil
}

const contactColumns = `id, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(email, '')`

func (r *Repository) ListContacts(ctx context.Context, filter ContactFilter) (*domain.ContactPage, error) {
	where := ""
	var args []any
	if filter.Search != "" {
		lower := "LOWER"
		if r.driver == driverSQLite {
			lower = sqliteLowerFunc
		}
		where = fmt.Sprintf(`WHERE %[1]s(COALESCE(first_name, '')) LIKE $1 ESCAPE '\'
			OR %[1]s(COALESCE(last_name, '')) LIKE $1 ESCAPE '\'
			OR %[1]s(COALESCE(email, '')) LIKE $1 ESCAPE '\'`, lower)
		args = append(args, "%"+escapeLike(strings.ToLower(filter.Search))+"%")
	}

	page := &domain.ContactPage{Contacts: make([]domain.Contact, 0)}
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts "+where, args...).Scan(&page.TotalCount); err != nil {
		return nil, fmt.Errorf("count contacts: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM contacts %s ORDER BY id LIMIT $%d OFFSET $%d`,
		contactColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, filter.PageSize, filter.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		page.Contacts = append(page.Contacts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return page, nil
}

func (r *Repository) GetContact(ctx context.Context, id int64) (*domain.Contact, error) {
	var c domain.Contact
	err := r.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id).
		Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query contact by id: %w", err)
	}
	return &c, nil
}

func (r *Repository) CreateContact(ctx context.Context, contact *domain.Contact) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO contacts (first_name, last_name, email)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		contact.FirstName,
		contact.LastName,
		contact.Email).Scan(&contact.ID)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (r *Repository) UpdateContact(ctx context.Context, contact *domain.Contact) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE contacts SET first_name = $1, last_name = $2, email = $3 WHERE id = $4`,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.ID)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return expectOneRow(result, ErrContactNotFound)
}

func (r *Repository) DeleteContact(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return expectOneRow(result, ErrContactNotFound)
}

func expectOneRow(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
