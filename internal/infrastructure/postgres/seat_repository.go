package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/alanmarcone/lugarnaviagem/internal/domain/seat"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/transaction"
)

const seatColumns = `id, number, occupied, occupied_by, price, created_at, updated_at`

type seatRow struct {
	ID         int64     `db:"id"`
	Number     int       `db:"number"`
	Occupied   bool      `db:"occupied"`
	OccupiedBy *string   `db:"occupied_by"`
	Price      int       `db:"price"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r *seatRow) toEntity() *seat.Seat {
	return &seat.Seat{
		ID: r.ID, Number: r.Number, Occupied: r.Occupied, OccupiedBy: r.OccupiedBy,
		Price: r.Price, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type SeatRepository struct{ db *sqlx.DB }

func NewSeatRepository(db *sqlx.DB) *SeatRepository { return &SeatRepository{db: db} }

func (r *SeatRepository) List(ctx context.Context) ([]*seat.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats ORDER BY number`
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	seats := make([]*seat.Seat, len(rows))
	for i := range rows {
		seats[i] = rows[i].toEntity()
	}
	return seats, nil
}

func (r *SeatRepository) GetByID(ctx context.Context, id int64) (*seat.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE id = $1`
	var row seatRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SeatRepository) GetByOccupant(ctx context.Context, identityRef string) (*seat.Seat, error) {
	// 同じ利用者が複数席を占有していても最新の1件を返す
	query := `SELECT ` + seatColumns + ` FROM seats WHERE occupied_by = $1 ORDER BY updated_at DESC LIMIT 1`
	var row seatRow
	if err := r.db.GetContext(ctx, &row, query, identityRef); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("占有座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// Occupy は占有状態を無条件に書き込む（競合検出はしない）
func (r *SeatRepository) Occupy(ctx context.Context, id int64, identityRef string) (*seat.Seat, error) {
	query := `UPDATE seats SET occupied = TRUE, occupied_by = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + seatColumns
	var row seatRow
	if err := r.db.GetContext(ctx, &row, query, id, identityRef); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席占有に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SeatRepository) CountAvailable(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM seats WHERE occupied = FALSE`); err != nil {
		return 0, fmt.Errorf("空席数取得に失敗: %w", err)
	}
	return count, nil
}

func (r *SeatRepository) Count(ctx context.Context, tx transaction.Tx) (int, error) {
	sqlxTx, err := UnwrapTx(tx)
	if err != nil {
		return 0, err
	}
	var count int
	// 初期投入の二重実行を防ぐためテーブルをロックしてから数える
	if _, err := sqlxTx.ExecContext(ctx, `LOCK TABLE seats IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return 0, fmt.Errorf("座席テーブルのロックに失敗: %w", err)
	}
	if err := sqlxTx.GetContext(ctx, &count, `SELECT COUNT(*) FROM seats`); err != nil {
		return 0, fmt.Errorf("座席数取得に失敗: %w", err)
	}
	return count, nil
}

func (r *SeatRepository) CreateBulk(ctx context.Context, tx transaction.Tx, seats []*seat.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	sqlxTx, err := UnwrapTx(tx)
	if err != nil {
		return err
	}

	query := `INSERT INTO seats (number, occupied, price, created_at, updated_at) VALUES `
	args := make([]interface{}, 0, len(seats)*5)
	placeholders := make([]string, 0, len(seats))
	for i, s := range seats {
		base := i * 5
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5))
		args = append(args, s.Number, s.Occupied, s.Price, s.CreatedAt, s.UpdatedAt)
	}
	query += strings.Join(placeholders, ", ") + ` RETURNING id, number`

	rows, err := sqlxTx.QueryContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return seat.ErrSeatNumberTaken
		}
		return fmt.Errorf("座席一括作成に失敗: %w", err)
	}
	defer rows.Close()

	byNumber := make(map[int]*seat.Seat, len(seats))
	for _, s := range seats {
		byNumber[s.Number] = s
	}
	for rows.Next() {
		var id int64
		var number int
		if err := rows.Scan(&id, &number); err != nil {
			return fmt.Errorf("座席ID取得に失敗: %w", err)
		}
		if s, ok := byNumber[number]; ok {
			s.ID = id
		}
	}
	return rows.Err()
}

var _ seat.Repository = (*SeatRepository)(nil)
