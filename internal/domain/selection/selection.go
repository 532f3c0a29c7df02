// Package selection は座席選択の状態遷移を表す。
// 副作用を持たない純粋関数のみを置き、通知やI/Oは呼び出し側が行う。
package selection

// State は選択状態（未選択 または 1席選択中）
type State struct {
	seatID   int64
	selected bool
}

// Empty は未選択状態を返す
func Empty() State {
	return State{}
}

// Selected は指定座席を選択中の状態を返す
func Selected(seatID int64) State {
	return State{seatID: seatID, selected: true}
}

// IsEmpty は未選択かを返す
func (s State) IsEmpty() bool {
	return !s.selected
}

// SeatID は選択中の座席IDを返す
func (s State) SeatID() (int64, bool) {
	return s.seatID, s.selected
}

// Holds は指定座席を選択中かを返す
func (s State) Holds(seatID int64) bool {
	return s.selected && s.seatID == seatID
}

// Signal は状態遷移の結果として利用者に伝える事象
type Signal string

const (
	SignalSeatSelected         Signal = "seat_selected"
	SignalSelectionRemoved     Signal = "selection_removed"
	SignalSeatUnavailable      Signal = "seat_unavailable"
	SignalOnlyOneSeatAllowed   Signal = "only_one_seat_allowed"
	SignalNothingSelected      Signal = "nothing_selected"
	SignalReservationConfirmed Signal = "reservation_confirmed"
	SignalReservationFailed    Signal = "reservation_failed"
)

// Rejected は操作が拒否されたことを表すシグナルかを返す
func (s Signal) Rejected() bool {
	switch s {
	case SignalSeatUnavailable, SignalOnlyOneSeatAllowed, SignalNothingSelected, SignalReservationFailed:
		return true
	}
	return false
}

// Toggle は座席クリック時の遷移を計算する
//
// 判定順:
//  1. 占有済みの座席 → 変化なし（seat_unavailable）
//  2. 選択中の座席と同じ → 選択解除（selection_removed）
//  3. 未選択 → 選択（seat_selected）
//  4. 別の座席を選択中 → 変化なし（only_one_seat_allowed）
func Toggle(current State, seatID int64, occupied bool) (State, Signal) {
	if occupied {
		return current, SignalSeatUnavailable
	}
	if current.Holds(seatID) {
		return Empty(), SignalSelectionRemoved
	}
	if current.IsEmpty() {
		return Selected(seatID), SignalSeatSelected
	}
	return current, SignalOnlyOneSeatAllowed
}

// ConfirmSucceeded は予約確定成功後の遷移
func ConfirmSucceeded(State) (State, Signal) {
	return Empty(), SignalReservationConfirmed
}

// ConfirmFailed は予約確定失敗後の遷移（選択は保持する）
func ConfirmFailed(current State) (State, Signal) {
	return current, SignalReservationFailed
}
