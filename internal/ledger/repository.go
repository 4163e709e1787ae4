// Package ledger keeps an append-only record of completed sales in Postgres,
// fed from the order-completed event stream.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var ErrDuplicateSale = errors.New("sale for this order already recorded")

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type SaleItem struct {
	GameID    string          `json:"game_id"`
	GameTitle string          `json:"game_title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Sale struct {
	OrderID       string
	OrderNumber   string
	UserID        string
	TotalAmount   decimal.Decimal
	PaymentMethod string
	Items         []SaleItem
	CompletedAt   time.Time
	RecordedAt    time.Time
}

type GameRevenue struct {
	GameID    string
	GameTitle string
	Units     int64
	Revenue   decimal.Decimal
}

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "ledger_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// InsertSale returns ErrDuplicateSale when the order was already recorded.
func (r *Repository) InsertSale(ctx context.Context, s *Sale) error {
	itemsJSON, err := json.Marshal(s.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal sale items: %w", err)
	}

	query := `INSERT INTO sales (order_id, order_number, user_id, total_amount, payment_method, items, completed_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.ExecContext(ctx, query,
		s.OrderID,
		s.OrderNumber,
		s.UserID,
		s.TotalAmount,
		s.PaymentMethod,
		itemsJSON,
		s.CompletedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateSale
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (r *Repository) ListSalesByUser(ctx context.Context, userID string) ([]*Sale, error) {
	query := `SELECT order_id, order_number, user_id, total_amount, payment_method, items, completed_at, recorded_at
	          FROM sales WHERE user_id = $1 ORDER BY completed_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query sales by user: %w", err)
	}
	defer rows.Close()

	var sales []*Sale
	for rows.Next() {
		var s Sale
		var itemsJSON []byte
		if err := rows.Scan(
			&s.OrderID,
			&s.OrderNumber,
			&s.UserID,
			&s.TotalAmount,
			&s.PaymentMethod,
			&itemsJSON,
			&s.CompletedAt,
			&s.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sale row: %w", err)
		}
		if err := json.Unmarshal(itemsJSON, &s.Items); err != nil {
			return nil, fmt.Errorf("unmarshal sale items: %w", err)
		}
		sales = append(sales, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return sales, nil
}

// RevenueByGame sums line subtotals across every recorded sale, highest
// revenue first.
func (r *Repository) RevenueByGame(ctx context.Context) ([]GameRevenue, error) {
	query := `SELECT item->>'game_id',
	                 MAX(item->>'game_title'),
	                 SUM((item->>'quantity')::bigint),
	                 SUM((item->>'subtotal')::numeric)
	          FROM sales, jsonb_array_elements(items) AS item
	          GROUP BY item->>'game_id'
	          ORDER BY 4 DESC, 1`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query revenue: %w", err)
	}
	defer rows.Close()

	var out []GameRevenue
	for rows.Next() {
		var g GameRevenue
		if err := rows.Scan(&g.GameID, &g.GameTitle, &g.Units, &g.Revenue); err != nil {
			return nil, fmt.Errorf("scan revenue row: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
