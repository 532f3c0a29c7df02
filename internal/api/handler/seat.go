package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type SeatHandler struct {
	service     SeatServiceInterface
	controllers ControllerRegistryInterface
}

func NewSeatHandler(s SeatServiceInterface, r ControllerRegistryInterface) *SeatHandler {
	return &SeatHandler{service: s, controllers: r}
}

type LayoutRowResponse struct {
	Left  [2]int `json:"left"`
	Right [2]int `json:"right"`
}

type LayoutResponse struct {
	Capacity int                 `json:"capacity" example:"50"`
	Front    []string            `json:"front"`
	Rows     []LayoutRowResponse `json:"rows"`
	Rear     []string            `json:"rear"`
}

type SeatListResponse struct {
	Seats     []SeatResponse    `json:"seats"`
	Selection SelectionResponse `json:"selection"`
}

type ToggleResponse struct {
	Accepted  bool              `json:"accepted"`
	Signal    string            `json:"signal" example:"seat_selected"`
	Notice    NoticeResponse    `json:"notice"`
	Seat      SeatResponse      `json:"seat"`
	Selection SelectionResponse `json:"selection"`
}

// Layout godoc
// @Summary 座席配置
// @Description 2-2配置の座席表（前方に運転席、後方に冷蔵庫とトイレ）を返します
// @Tags seats
// @Produce json
// @Success 200 {object} LayoutResponse
// @Router /layout [get]
func (h *SeatHandler) Layout(c echo.Context) error {
	l, err := h.service.Layout()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
	rows := make([]LayoutRowResponse, len(l.Rows))
	for i, r := range l.Rows {
		rows[i] = LayoutRowResponse{Left: r.Left, Right: r.Right}
	}
	return c.JSON(http.StatusOK, LayoutResponse{Capacity: l.Capacity, Front: l.Front, Rows: rows, Rear: l.Rear})
}

// List godoc
// @Summary 座席一覧
// @Description 座席一覧を取り直し、現在の選択状態と合わせて返します
// @Tags seats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SeatListResponse
// @Failure 503 {object} map[string]string "座席情報を取得できない"
// @Router /seats [get]
func (h *SeatHandler) List(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	ctrl := h.controllers.Get(id.SessionID)
	seats, err := ctrl.ListSeats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, SeatListResponse{
		Seats:     toSeatResponses(seats),
		Selection: toSelectionResponse(ctrl.Snapshot().Selection),
	})
}

// CountAvailable godoc
// @Summary 空席数
// @Tags seats
// @Produce json
// @Success 200 {object} map[string]int
// @Router /seats/available/count [get]
func (h *SeatHandler) CountAvailable(c echo.Context) error {
	count, err := h.service.CountAvailable(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"count": count})
}

// Toggle godoc
// @Summary 座席のクリック
// @Description 空席なら選択、選択中なら解除します。拒否された場合も200で accepted=false を返します
// @Tags seats
// @Produce json
// @Security BearerAuth
// @Param id path int true "座席ID"
// @Success 200 {object} ToggleResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "座席一覧が未取得"
// @Router /seats/{id}/toggle [post]
func (h *SeatHandler) Toggle(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	seatID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || seatID < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "座席IDが不正です")
	}
	out, err := h.controllers.Get(id.SessionID).Toggle(seatID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ToggleResponse{
		Accepted:  !out.Signal.Rejected(),
		Signal:    string(out.Signal),
		Notice:    toNoticeResponse(out.Signal, out.Seat),
		Seat:      toSeatResponse(out.Seat),
		Selection: toSelectionResponse(out.Selection),
	})
}
