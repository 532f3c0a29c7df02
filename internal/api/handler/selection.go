package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alanmarcone/lugarnaviagem/internal/domain/selection"
)

type SelectionHandler struct {
	controllers ControllerRegistryInterface
}

func NewSelectionHandler(r ControllerRegistryInterface) *SelectionHandler {
	return &SelectionHandler{controllers: r}
}

type SelectionStateResponse struct {
	Selection SelectionResponse `json:"selection"`
	Seat      *SeatResponse     `json:"seat,omitempty"`
	Loading   bool              `json:"loading"`
}

type ConfirmResponse struct {
	Accepted  bool              `json:"accepted"`
	Signal    string            `json:"signal" example:"reservation_confirmed"`
	Notice    NoticeResponse    `json:"notice"`
	Seat      *SeatResponse     `json:"seat,omitempty"`
	Seats     []SeatResponse    `json:"seats,omitempty"`
	Selection SelectionResponse `json:"selection"`
	Error     string            `json:"error,omitempty"`
}

// Get godoc
// @Summary 現在の選択状態
// @Tags selection
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SelectionStateResponse
// @Router /selection [get]
func (h *SelectionHandler) Get(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	ctrl := h.controllers.Get(id.SessionID)
	snap := ctrl.Snapshot()
	resp := SelectionStateResponse{
		Selection: toSelectionResponse(snap.Selection),
		Loading:   snap.Loading,
	}
	if s := ctrl.SelectedSeat(); s != nil {
		sr := toSeatResponse(s)
		resp.Seat = &sr
	}
	return c.JSON(http.StatusOK, resp)
}

// Confirm godoc
// @Summary 予約の確定
// @Description 選択中の座席を現在の利用者で予約します。失敗しても選択は保持されます
// @Tags selection
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ConfirmResponse
// @Failure 401 {object} ConfirmResponse
// @Failure 503 {object} ConfirmResponse
// @Router /selection/confirm [post]
func (h *SelectionHandler) Confirm(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	res, err := h.controllers.Get(id.SessionID).Confirm(c.Request().Context())

	resp := ConfirmResponse{
		Accepted:  !res.Signal.Rejected(),
		Signal:    string(res.Signal),
		Notice:    toNoticeResponse(res.Signal, res.Seat),
		Selection: toSelectionResponse(res.Selection),
	}
	if res.Seat != nil {
		sr := toSeatResponse(res.Seat)
		resp.Seat = &sr
	}
	if res.Seats != nil {
		resp.Seats = toSeatResponses(res.Seats)
	}
	if err != nil {
		resp.Error = err.Error()
		return c.JSON(statusFor(err), resp)
	}
	if res.Signal == selection.SignalReservationConfirmed && res.Seats == nil {
		c.Response().Header().Set("X-Seats-Stale", "true")
	}
	return c.JSON(http.StatusOK, resp)
}
