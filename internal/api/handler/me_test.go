package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alanmarcone/lugarnaviagem/internal/application"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/seat"
)

func TestMeHandler_Seat(t *testing.T) {
	e := NewTestEcho()

	t.Run("予約済みの座席を返す", func(t *testing.T) {
		svc := new(MockSeatService)
		svc.On("SeatOf", mock.Anything, "user-1").Return(testSeat(3, true), nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/me/seat", nil), rec)
		WithTestIdentity(c, testIdentity)

		require.NoError(t, NewMeHandler(svc, nil).Seat(c))
		assert.Contains(t, rec.Body.String(), `"number":3`)
	})

	t.Run("座席がなければ404", func(t *testing.T) {
		svc := new(MockSeatService)
		svc.On("SeatOf", mock.Anything, "user-1").Return(nil, seat.ErrSeatNotFound)
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/me/seat", nil), rec)
		WithTestIdentity(c, testIdentity)

		err := NewMeHandler(svc, nil).Seat(c)

		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})
}

func TestMeHandler_BoardingPass(t *testing.T) {
	e := NewTestEcho()

	t.Run("PDFを添付で返す", func(t *testing.T) {
		passes := new(MockBoardingPassService)
		passes.On("Render", mock.Anything, testIdentity).Return(&application.BoardingPass{
			Filename: "assento-03.pdf", PDF: []byte("%PDF-1.3 test"), Seat: testSeat(3, true),
		}, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/me/seat/pass", nil), rec)
		WithTestIdentity(c, testIdentity)

		require.NoError(t, NewMeHandler(nil, passes).BoardingPass(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "assento-03.pdf")
		assert.Equal(t, "%PDF-1.3 test", rec.Body.String())
	})

	t.Run("座席がなければ404", func(t *testing.T) {
		passes := new(MockBoardingPassService)
		passes.On("Render", mock.Anything, testIdentity).Return(nil, seat.ErrSeatNotFound)
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/me/seat/pass", nil), rec)
		WithTestIdentity(c, testIdentity)

		err := NewMeHandler(nil, passes).BoardingPass(c)

		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})
}
