package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alanmarcone/lugarnaviagem/internal/application"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/identity"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/seat"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/selection"
)

type SeatResponse struct {
	ID       int64  `json:"id" example:"3"`
	Number   int    `json:"number" example:"3"`
	Occupied bool   `json:"occupied" example:"false"`
	Price    int    `json:"price" example:"0"`
	Side     string `json:"side" example:"left"`
}

func toSeatResponse(s *seat.Seat) SeatResponse {
	return SeatResponse{
		ID: s.ID, Number: s.Number, Occupied: s.Occupied,
		Price: s.Price, Side: seat.SideOf(s.Number),
	}
}

func toSeatResponses(seats []*seat.Seat) []SeatResponse {
	resp := make([]SeatResponse, len(seats))
	for i, s := range seats {
		resp[i] = toSeatResponse(s)
	}
	return resp
}

// SelectionResponse は選択状態（未選択なら seat_id は null）
type SelectionResponse struct {
	SeatID *int64 `json:"seat_id"`
}

func toSelectionResponse(s selection.State) SelectionResponse {
	if id, ok := s.SeatID(); ok {
		return SelectionResponse{SeatID: &id}
	}
	return SelectionResponse{}
}

// NoticeResponse はクライアントがトースト表示する通知
type NoticeResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Destructive bool   `json:"destructive"`
}

func toNoticeResponse(signal selection.Signal, s *seat.Seat) NoticeResponse {
	number := 0
	if s != nil {
		number = s.Number
	}
	n := selection.NoticeFor(signal, number)
	return NoticeResponse{Title: n.Title, Description: n.Description, Destructive: n.Destructive}
}

// currentIdentity は認証ミドルウェアが載せた利用者を返す
func currentIdentity(c echo.Context) (identity.Identity, error) {
	id, ok := identity.FromContext(c.Request().Context())
	if !ok {
		return identity.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, identity.ErrNoActiveSession.Error())
	}
	return id, nil
}

// statusFor はドメインエラーをHTTPステータスに対応付ける
func statusFor(err error) int {
	switch {
	case errors.Is(err, identity.ErrNoActiveSession):
		return http.StatusUnauthorized
	case errors.Is(err, seat.ErrSeatNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrSeatsNotLoaded):
		return http.StatusConflict
	case errors.Is(err, seat.ErrDirectoryUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func httpError(err error) error {
	return echo.NewHTTPError(statusFor(err), err.Error()).SetInternal(err)
}
