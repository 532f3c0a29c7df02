package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/alanmarcone/lugarnaviagem/internal/domain/identity"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/seat"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/selection"
	"github.com/alanmarcone/lugarnaviagem/internal/pkg/logger"
	"github.com/alanmarcone/lugarnaviagem/internal/pkg/metrics"
)

var (
	ErrSeatsNotLoaded = errors.New("座席一覧が読み込まれていません")
)

// ToggleOutcome は座席クリックの結果
type ToggleOutcome struct {
	Signal    selection.Signal
	Seat      *seat.Seat
	Selection selection.State
}

// ConfirmResult は予約確定の結果
type ConfirmResult struct {
	Signal selection.Signal
	// Seat は確定した座席（失敗時は選択中の座席）
	Seat *seat.Seat
	// Seats は確定後に取り直した一覧（取り直しに失敗した場合は nil）
	Seats     []*seat.Seat
	Selection selection.State
}

// Snapshot はコントローラーの表示用状態
type Snapshot struct {
	Seats     []*seat.Seat
	Selection selection.State
	Loading   bool
}

// SeatController は1セッション分の座席選択を管理する
//
// ロックは台帳やIDプロバイダの呼び出し中には保持しない。
type SeatController struct {
	directory         SeatDirectory
	identities        identity.Provider
	signedOutRedirect string
	metrics           *metrics.Metrics

	mu    sync.Mutex
	state selection.State
	// 選択中の座席。一覧の取り直しに失敗しても選択とともに残す
	selected *seat.Seat
	seats    []*seat.Seat
	byID     map[int64]*seat.Seat
	loading  bool
	fetchSeq uint64
}

func NewSeatController(d SeatDirectory, ip identity.Provider, signedOutRedirect string, m *metrics.Metrics) *SeatController {
	return &SeatController{
		directory:         d,
		identities:        ip,
		signedOutRedirect: signedOutRedirect,
		metrics:           m,
		state:             selection.Empty(),
	}
}

// ListSeats は座席一覧を取り直す
// 取得中は Loading が true になり、Toggle は ErrSeatsNotLoaded を返す。
// 失敗した場合は前回の一覧も破棄する。
func (c *SeatController) ListSeats(ctx context.Context) ([]*seat.Seat, error) {
	c.mu.Lock()
	c.fetchSeq++
	seq := c.fetchSeq
	c.loading = true
	c.seats, c.byID = nil, nil
	c.mu.Unlock()

	seats, err := c.directory.ListSeats(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.fetchSeq {
		// より新しい取得が走っている
		if err != nil {
			return nil, err
		}
		return seats, nil
	}
	c.loading = false
	if err != nil {
		return nil, fmt.Errorf("座席一覧の取得に失敗: %w", err)
	}

	c.seats = seats
	c.byID = make(map[int64]*seat.Seat, len(seats))
	for _, se := range seats {
		c.byID[se.ID] = se
	}
	// 選択中の座席が他者に占有された場合は選択を外す
	if id, ok := c.state.SeatID(); ok {
		if se, found := c.byID[id]; found && se.IsAvailable() {
			c.selected = se
		} else {
			c.state, c.selected = selection.Empty(), nil
		}
	}
	return seats, nil
}

// Toggle は座席のクリックを処理する
func (c *SeatController) Toggle(seatID int64) (ToggleOutcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loading || c.byID == nil {
		return ToggleOutcome{}, ErrSeatsNotLoaded
	}
	se, ok := c.byID[seatID]
	if !ok {
		return ToggleOutcome{}, seat.ErrSeatNotFound
	}

	next, signal := selection.Toggle(c.state, seatID, !se.IsAvailable())
	c.state = next
	switch {
	case next.IsEmpty():
		c.selected = nil
	case signal == selection.SignalSeatSelected:
		c.selected = se
	}
	c.recordSignal(signal)

	return ToggleOutcome{Signal: signal, Seat: se, Selection: next}, nil
}

// Confirm は選択中の座席を現在の利用者で予約する
// 失敗時は選択を保持し、自動での再試行はしない。
func (c *SeatController) Confirm(ctx context.Context) (ConfirmResult, error) {
	c.mu.Lock()
	seatID, selected := c.state.SeatID()
	selectedSeat := c.selected
	c.mu.Unlock()

	if !selected {
		c.recordSignal(selection.SignalNothingSelected)
		c.recordReservation("nothing_selected")
		return ConfirmResult{Signal: selection.SignalNothingSelected, Selection: selection.Empty()}, nil
	}

	// 一度発行した予約は呼び出し元の切断で取り消さない
	ctx = context.WithoutCancel(ctx)

	fail := func(err error) (ConfirmResult, error) {
		c.mu.Lock()
		current, signal := selection.ConfirmFailed(c.state)
		c.mu.Unlock()
		c.recordSignal(signal)
		c.recordReservation("failed")
		return ConfirmResult{Signal: signal, Seat: selectedSeat, Selection: current}, err
	}

	id, err := c.identities.CurrentIdentity(ctx)
	if err != nil {
		return fail(err)
	}

	reserved, err := c.directory.ReserveSeat(ctx, seatID, id.UserID)
	if err != nil {
		return fail(err)
	}

	c.mu.Lock()
	// 確定中に選択が変わっていなければ解除する
	var signal selection.Signal
	if c.state.Holds(seatID) {
		c.state, signal = selection.ConfirmSucceeded(c.state)
		c.selected = nil
	} else {
		_, signal = selection.ConfirmSucceeded(c.state)
	}
	c.mu.Unlock()
	c.recordSignal(signal)
	c.recordReservation("confirmed")

	seats, err := c.ListSeats(ctx)
	if err != nil {
		logger.ForSession(id.UserID, id.SessionID).Warn("予約後の座席一覧の取得に失敗",
			zap.Int64("seat_id", seatID),
			zap.Error(err),
		)
	}

	return ConfirmResult{Signal: signal, Seat: reserved, Seats: seats, Selection: c.Selection()}, nil
}

// SignOut はセッションを終了し、未認証時の遷移先を返す
func (c *SeatController) SignOut(ctx context.Context) (string, error) {
	if err := c.identities.SignOut(ctx); err != nil {
		return "", err
	}
	return c.signedOutRedirect, nil
}

// Selection は現在の選択状態を返す
func (c *SeatController) Selection() selection.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Loading は座席一覧の取得中かを返す
func (c *SeatController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Snapshot は一覧・選択・取得中フラグをまとめて返す
func (c *SeatController) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{Seats: c.seats, Selection: c.state, Loading: c.loading}
}

// SelectedSeat は選択中の座席を返す（未選択なら nil）
func (c *SeatController) SelectedSeat() *seat.Seat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

func (c *SeatController) recordSignal(signal selection.Signal) {
	if c.metrics != nil {
		c.metrics.SeatSelectionSignalsTotal.WithLabelValues(string(signal)).Inc()
	}
}

func (c *SeatController) recordReservation(status string) {
	if c.metrics != nil {
		c.metrics.ReservationsTotal.WithLabelValues(status).Inc()
	}
}
