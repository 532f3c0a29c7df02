package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// BoardingPassHandler は改札側の搭乗券検証
type BoardingPassHandler struct {
	passes BoardingPassServiceInterface
}

func NewBoardingPassHandler(p BoardingPassServiceInterface) *BoardingPassHandler {
	return &BoardingPassHandler{passes: p}
}

type VerifyPassRequest struct {
	Code string `json:"code" validate:"required" example:"7|7|user-1|1709294400|sig"`
}

type VerifyPassResponse struct {
	Valid      bool       `json:"valid"`
	Reason     string     `json:"reason,omitempty" example:"seat_reassigned"`
	SeatNumber int        `json:"seat_number,omitempty" example:"7"`
	UserID     string     `json:"user_id,omitempty"`
	IssuedAt   *time.Time `json:"issued_at,omitempty"`
}

// Verify godoc
// @Summary 搭乗券QRの検証
// @Description 署名と、座席がいまも発行先の利用者のものかを確認する
// @Tags boarding-passes
// @Accept json
// @Produce json
// @Param request body VerifyPassRequest true "QRの文字列"
// @Success 200 {object} VerifyPassResponse
// @Failure 400 {object} map[string]string
// @Router /boarding-passes/verify [post]
func (h *BoardingPassHandler) Verify(c echo.Context) error {
	var req VerifyPassRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	check, err := h.passes.Verify(c.Request().Context(), req.Code)
	if err != nil {
		return httpError(err)
	}
	resp := VerifyPassResponse{
		Valid: check.Valid, Reason: check.Reason,
		SeatNumber: check.SeatNumber, UserID: check.UserID,
	}
	if !check.IssuedAt.IsZero() {
		resp.IssuedAt = &check.IssuedAt
	}
	return c.JSON(http.StatusOK, resp)
}
