package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/alanmarcone/lugarnaviagem/internal/application"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/user"
)

type AuthHandler struct {
	service     AuthServiceInterface
	controllers ControllerRegistryInterface
}

func NewAuthHandler(s AuthServiceInterface, r ControllerRegistryInterface) *AuthHandler {
	return &AuthHandler{service: s, controllers: r}
}

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email" example:"maria@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"segredo123"`
	Name     string `json:"name" validate:"max=120" example:"Maria"`
	WhatsApp string `json:"whatsapp" validate:"max=32" example:"+55 11 99999-0000"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email" example:"maria@example.com"`
	Password string `json:"password" validate:"required" example:"segredo123"`
}

type UserResponse struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Name     *string `json:"name,omitempty"`
	WhatsApp *string `json:"whatsapp,omitempty"`
}

type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type IdentityResponse struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	SessionID string `json:"session_id"`
}

type SignOutResponse struct {
	RedirectTo string `json:"redirect_to" example:"/login"`
}

func toSessionResponse(s *application.Session) SessionResponse {
	return SessionResponse{
		Token:     s.Token.Value,
		ExpiresAt: s.Token.ExpiresAt,
		User: UserResponse{
			ID: s.User.ID, Email: s.User.Email, Name: s.User.Name, WhatsApp: s.User.WhatsApp,
		},
	}
}

// SignUp godoc
// @Summary 利用者登録
// @Description 利用者を登録し、そのままサインインしたセッションを返します
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignUpRequest true "登録情報"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "メールアドレスが登録済み"
// @Router /auth/sign-up [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req SignUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	s, err := h.service.SignUp(c.Request().Context(), application.SignUpInput{
		Email: req.Email, Password: req.Password, Name: req.Name, WhatsApp: req.WhatsApp,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailAlreadyExists):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, user.ErrInvalidEmail), errors.Is(err, user.ErrPasswordTooShort):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
	return c.JSON(http.StatusCreated, toSessionResponse(s))
}

// SignIn godoc
// @Summary サインイン
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignInRequest true "認証情報"
// @Success 200 {object} SessionResponse
// @Failure 401 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Router /auth/sign-in [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req SignInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	s, err := h.service.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(s))
}

// SignOut godoc
// @Summary サインアウト
// @Description セッションを終了し、選択中の状態も破棄します
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SignOutResponse
// @Failure 401 {object} map[string]string
// @Router /auth/sign-out [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	redirect, err := h.controllers.Get(id.SessionID).SignOut(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	h.controllers.Remove(id.SessionID)
	return c.JSON(http.StatusOK, SignOutResponse{RedirectTo: redirect})
}

// Session godoc
// @Summary 現在の利用者
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} IdentityResponse
// @Failure 401 {object} map[string]string
// @Router /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, IdentityResponse{UserID: id.UserID, Email: id.Email, SessionID: id.SessionID})
}
