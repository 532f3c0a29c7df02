package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alanmarcone/lugarnaviagem/internal/domain/seat"
)

type MeHandler struct {
	seats  SeatServiceInterface
	passes BoardingPassServiceInterface
}

func NewMeHandler(s SeatServiceInterface, p BoardingPassServiceInterface) *MeHandler {
	return &MeHandler{seats: s, passes: p}
}

// Seat godoc
// @Summary 自分の座席
// @Tags me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SeatResponse
// @Failure 404 {object} map[string]string "予約済みの座席がない"
// @Router /me/seat [get]
func (h *MeHandler) Seat(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	s, err := h.seats.SeatOf(c.Request().Context(), id.UserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toSeatResponse(s))
}

// BoardingPass godoc
// @Summary 搭乗券のダウンロード
// @Tags me
// @Produce application/pdf
// @Security BearerAuth
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string "予約済みの座席がない"
// @Router /me/seat/pass [get]
func (h *MeHandler) BoardingPass(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	pass, err := h.passes.Render(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, seat.ErrSeatNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "予約済みの座席がありません")
		}
		return httpError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+pass.Filename+`"`)
	return c.Blob(http.StatusOK, "application/pdf", pass.PDF)
}
