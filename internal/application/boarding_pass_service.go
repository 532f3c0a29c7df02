package application

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/alanmarcone/lugarnaviagem/internal/domain/identity"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/seat"
	"github.com/alanmarcone/lugarnaviagem/internal/domain/user"
	"github.com/alanmarcone/lugarnaviagem/internal/pkg/logger"
)

// SeatLocator は搭乗券に載せる座席を引く
type SeatLocator interface {
	SeatOf(ctx context.Context, identityRef string) (*seat.Seat, error)
	Seat(ctx context.Context, id int64) (*seat.Seat, error)
}

// PassengerLookup は搭乗券に載せる利用者プロフィールを引く
type PassengerLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// BoardingPass は発行した搭乗券
type BoardingPass struct {
	Filename string
	PDF      []byte
	Seat     *seat.Seat
	Payload  string
}

// 搭乗券が無効な理由
const (
	PassMalformed      = "malformed"
	PassBadSignature   = "invalid_signature"
	PassSeatNotFound   = "seat_not_found"
	PassSeatReassigned = "seat_reassigned"
)

// PassCheck は搭乗券QRの検証結果
type PassCheck struct {
	Valid      bool
	Reason     string
	SeatNumber int
	UserID     string
	IssuedAt   time.Time
}

// BoardingPassService は予約済み座席の搭乗券（PDF + QRコード）を作り、検証する
type BoardingPassService struct {
	seats  SeatLocator
	users  PassengerLookup
	secret []byte
	now    func() time.Time
}

func NewBoardingPassService(seats SeatLocator, users PassengerLookup, secret string) *BoardingPassService {
	return &BoardingPassService{seats: seats, users: users, secret: []byte(secret), now: time.Now}
}

// Render は利用者の座席の搭乗券を作る。座席が無ければ seat.ErrSeatNotFound
func (s *BoardingPassService) Render(ctx context.Context, id identity.Identity) (*BoardingPass, error) {
	se, err := s.seats.SeatOf(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	issuedAt := s.now().UTC()
	payload := s.payload(se.ID, se.Number, id.UserID, issuedAt)

	qrPNG, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("QRコード生成に失敗: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 12, tr("Cartão de embarque"))
	pdf.Ln(16)

	pdf.SetFont("Arial", "B", 40)
	pdf.Cell(0, 18, fmt.Sprintf("%02d", se.Number))
	pdf.Ln(20)

	pdf.SetFont("Arial", "", 12)
	side := "esquerdo"
	if seat.SideOf(se.Number) == "right" {
		side = "direito"
	}
	pdf.Cell(0, 8, tr(fmt.Sprintf("Assento %d (lado %s)", se.Number, side)))
	pdf.Ln(8)
	if name := s.passengerName(ctx, id); name != "" {
		pdf.Cell(0, 8, tr("Passageiro: "+name))
		pdf.Ln(8)
	}
	if se.Price > 0 {
		pdf.Cell(0, 8, tr(fmt.Sprintf("Valor: R$ %d,%02d", se.Price/100, se.Price%100)))
		pdf.Ln(8)
	}
	pdf.Cell(0, 8, tr("Emitido em "+issuedAt.Format("02/01/2006 15:04")+" UTC"))

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 44, 110, 60, 60, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF生成に失敗: %w", err)
	}

	return &BoardingPass{
		Filename: fmt.Sprintf("assento-%02d.pdf", se.Number),
		PDF:      buf.Bytes(),
		Seat:     se,
		Payload:  payload,
	}, nil
}

// Verify は QR の文字列を検証し、その座席がいまも発行先の利用者のものかを確かめる
// 後勝ちで上書きされた座席の搭乗券は seat_reassigned になる。
func (s *BoardingPassService) Verify(ctx context.Context, payload string) (*PassCheck, error) {
	if !s.VerifyPayload(payload) {
		return &PassCheck{Reason: PassBadSignature}, nil
	}
	parts := strings.Split(payload, "|")
	if len(parts) != 5 {
		return &PassCheck{Reason: PassMalformed}, nil
	}
	seatID, err1 := strconv.ParseInt(parts[0], 10, 64)
	number, err2 := strconv.Atoi(parts[1])
	issued, err3 := strconv.ParseInt(parts[3], 10, 64)
	if err := errors.Join(err1, err2, err3); err != nil {
		return &PassCheck{Reason: PassMalformed}, nil
	}

	check := &PassCheck{SeatNumber: number, UserID: parts[2], IssuedAt: time.Unix(issued, 0).UTC()}
	se, err := s.seats.Seat(ctx, seatID)
	if err != nil {
		if errors.Is(err, seat.ErrSeatNotFound) {
			check.Reason = PassSeatNotFound
			return check, nil
		}
		return nil, err
	}
	if !se.IsOccupiedBy(check.UserID) {
		check.Reason = PassSeatReassigned
		return check, nil
	}
	check.Valid = true
	return check, nil
}

// VerifyPayload は QR の文字列が改ざんされていないかを確認する
func (s *BoardingPassService) VerifyPayload(payload string) bool {
	i := strings.LastIndexByte(payload, '|')
	if i < 0 {
		return false
	}
	data, sig := payload[:i], payload[i+1:]
	return hmac.Equal([]byte(sig), []byte(s.sign(data)))
}

// payload は QR に載せる文字列（seat-id|number|user|issued-at|署名）
func (s *BoardingPassService) payload(seatID int64, seatNumber int, userID string, issuedAt time.Time) string {
	data := fmt.Sprintf("%d|%d|%s|%d", seatID, seatNumber, userID, issuedAt.Unix())
	return data + "|" + s.sign(data)
}

func (s *BoardingPassService) sign(data string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// passengerName はプロフィールの名前を返す。取れなければメールアドレス
func (s *BoardingPassService) passengerName(ctx context.Context, id identity.Identity) string {
	if s.users != nil {
		u, err := s.users.GetByID(ctx, id.UserID)
		switch {
		case err != nil:
			logger.Warn("搭乗券の利用者プロフィール取得に失敗", zap.String("user_id", id.UserID), zap.Error(err))
		case u.Name != nil:
			return *u.Name
		case u.Email != "":
			return u.Email
		}
	}
	return id.Email
}
