package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanmarcone/lugarnaviagem/internal/api/handler"
)

type client struct {
	t     *testing.T
	e     *echo.Echo
	token string
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if c.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// signUp は新しい利用者を登録し、トークン付きのクライアントを返す
func signUp(t *testing.T, e *echo.Echo, email string) *client {
	t.Helper()
	c := &client{t: t, e: e}
	rec := c.do(http.MethodPost, "/api/v1/auth/sign-up", map[string]string{
		"email": email, "password": "segredo123", "name": "Passageiro",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c.token = decode[handler.SessionResponse](t, rec).Token
	return c
}

func (c *client) seats() handler.SeatListResponse {
	c.t.Helper()
	rec := c.do(http.MethodGet, "/api/v1/seats", nil)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[handler.SeatListResponse](c.t, rec)
}

func (c *client) toggle(id int64) handler.ToggleResponse {
	c.t.Helper()
	rec := c.do(http.MethodPost, fmt.Sprintf("/api/v1/seats/%d/toggle", id), nil)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[handler.ToggleResponse](c.t, rec)
}

func seatByNumber(t *testing.T, seats []handler.SeatResponse, number int) handler.SeatResponse {
	t.Helper()
	for _, s := range seats {
		if s.Number == number {
			return s
		}
	}
	t.Fatalf("座席 %d が見つかりません", number)
	return handler.SeatResponse{}
}

func TestSeatFlow_SelectConfirmAndDownloadPass(t *testing.T) {
	e := getTestServer(t)
	maria := signUp(t, e, "maria@example.com")

	list := maria.seats()
	require.Len(t, list.Seats, testSeatCount)
	assert.Nil(t, list.Selection.SeatID)

	seat7 := seatByNumber(t, list.Seats, 7)
	seat12 := seatByNumber(t, list.Seats, 12)

	// 7を選択 → 12は拒否 → 7を解除 → 12を選択
	assert.Equal(t, "seat_selected", maria.toggle(seat7.ID).Signal)
	rejected := maria.toggle(seat12.ID)
	assert.False(t, rejected.Accepted)
	assert.Equal(t, "only_one_seat_allowed", rejected.Signal)
	assert.Equal(t, "selection_removed", maria.toggle(seat7.ID).Signal)
	assert.Equal(t, "seat_selected", maria.toggle(seat12.ID).Signal)

	rec := maria.do(http.MethodPost, "/api/v1/selection/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	confirmed := decode[handler.ConfirmResponse](t, rec)
	assert.True(t, confirmed.Accepted)
	assert.Equal(t, "reservation_confirmed", confirmed.Signal)
	assert.Nil(t, confirmed.Selection.SeatID)
	assert.True(t, seatByNumber(t, confirmed.Seats, 12).Occupied)

	rec = maria.do(http.MethodGet, "/api/v1/me/seat", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12, decode[handler.SeatResponse](t, rec).Number)

	rec = maria.do(http.MethodGet, "/api/v1/me/seat/pass", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = maria.do(http.MethodGet, "/api/v1/seats/available/count", nil)
	assert.JSONEq(t, fmt.Sprintf(`{"count":%d}`, testSeatCount-1), rec.Body.String())
}

func TestSeatFlow_OccupiedSeatIsRejected(t *testing.T) {
	e := getTestServer(t)
	ana := signUp(t, e, "ana@example.com")
	bruno := signUp(t, e, "bruno@example.com")

	seat10 := seatByNumber(t, ana.seats().Seats, 10)
	ana.toggle(seat10.ID)
	rec := ana.do(http.MethodPost, "/api/v1/selection/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	list := bruno.seats()
	assert.True(t, seatByNumber(t, list.Seats, 10).Occupied)

	out := bruno.toggle(seat10.ID)
	assert.False(t, out.Accepted)
	assert.Equal(t, "seat_unavailable", out.Signal)
	assert.True(t, out.Notice.Destructive)
	assert.Nil(t, out.Selection.SeatID)
}

func TestSeatFlow_ConfirmWithoutSelection(t *testing.T) {
	e := getTestServer(t)
	c := signUp(t, e, "carla@example.com")
	c.seats()

	rec := c.do(http.MethodPost, "/api/v1/selection/confirm", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[handler.ConfirmResponse](t, rec)
	assert.False(t, resp.Accepted)
	assert.Equal(t, "nothing_selected", resp.Signal)
}

func TestSeatFlow_ToggleBeforeListing(t *testing.T) {
	e := getTestServer(t)
	c := signUp(t, e, "davi@example.com")

	rec := c.do(http.MethodPost, "/api/v1/seats/1/toggle", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSeatFlow_SignOutInvalidatesToken(t *testing.T) {
	e := getTestServer(t)
	c := signUp(t, e, "elis@example.com")

	rec := c.do(http.MethodGet, "/api/v1/auth/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodPost, "/api/v1/auth/sign-out", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/login", decode[handler.SignOutResponse](t, rec).RedirectTo)

	rec = c.do(http.MethodGet, "/api/v1/seats", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSeatFlow_SignInAfterSignUp(t *testing.T) {
	e := getTestServer(t)
	signUp(t, e, "fabio@example.com")

	anon := &client{t: t, e: e}
	rec := anon.do(http.MethodPost, "/api/v1/auth/sign-in", map[string]string{
		"email": "Fabio@Example.com", "password": "segredo123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = anon.do(http.MethodPost, "/api/v1/auth/sign-in", map[string]string{
		"email": "fabio@example.com", "password": "errada",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = anon.do(http.MethodPost, "/api/v1/auth/sign-up", map[string]string{
		"email": "fabio@example.com", "password": "segredo123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// 同じ座席への同時確定は両方成功し、後から書いた方が占有者になる
func TestSeatFlow_ConcurrentConfirmLastWriteWins(t *testing.T) {
	e := getTestServer(t)
	a := signUp(t, e, "gabi@example.com")
	b := signUp(t, e, "heitor@example.com")

	target := seatByNumber(t, a.seats().Seats, 20)
	b.seats()
	require.True(t, a.toggle(target.ID).Accepted)
	require.True(t, b.toggle(target.ID).Accepted)

	var wg sync.WaitGroup
	codes := make([]int, 2)
	for i, c := range []*client{a, b} {
		wg.Add(1)
		go func(i int, c *client) {
			defer wg.Done()
			codes[i] = c.do(http.MethodPost, "/api/v1/selection/confirm", nil).Code
		}(i, c)
	}
	wg.Wait()

	assert.Equal(t, []int{http.StatusOK, http.StatusOK}, codes)

	rec := a.do(http.MethodGet, "/api/v1/seats/available/count", nil)
	assert.JSONEq(t, fmt.Sprintf(`{"count":%d}`, testSeatCount-1), rec.Body.String())

	// どちらか一方だけが座席を持つ
	owners := 0
	for _, c := range []*client{a, b} {
		if c.do(http.MethodGet, "/api/v1/me/seat", nil).Code == http.StatusOK {
			owners++
		}
	}
	assert.Equal(t, 1, owners)
}
