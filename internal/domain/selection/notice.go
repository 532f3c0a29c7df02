package selection

import "fmt"

// Notice はクライアントがトースト表示する内容
type Notice struct {
	Title       string
	Description string
	Destructive bool
}

// NoticeFor はシグナルに対応する通知文言を返す
// seatNumber は表示用の座席番号
func NoticeFor(signal Signal, seatNumber int) Notice {
	switch signal {
	case SignalSeatUnavailable:
		return Notice{
			Title:       "Assento indisponível",
			Description: "Este assento já está ocupado.",
			Destructive: true,
		}
	case SignalSelectionRemoved:
		return Notice{
			Title:       "Seleção removida",
			Description: fmt.Sprintf("Assento %d foi desmarcado.", seatNumber),
		}
	case SignalSeatSelected:
		return Notice{
			Title:       "Assento selecionado",
			Description: fmt.Sprintf("Você selecionou o assento %d.", seatNumber),
		}
	case SignalOnlyOneSeatAllowed:
		return Notice{
			Title:       "Apenas um assento permitido",
			Description: "Por favor, desmarque o assento atual antes de selecionar outro.",
			Destructive: true,
		}
	case SignalNothingSelected:
		return Notice{
			Title:       "Nenhum assento selecionado",
			Description: "Selecione um assento antes de confirmar a reserva.",
			Destructive: true,
		}
	case SignalReservationConfirmed:
		return Notice{
			Title:       "Reserva confirmada",
			Description: fmt.Sprintf("Assento %d foi reservado com sucesso!", seatNumber),
		}
	case SignalReservationFailed:
		return Notice{
			Title:       "Falha na reserva",
			Description: fmt.Sprintf("Não foi possível reservar o assento %d. Tente novamente.", seatNumber),
			Destructive: true,
		}
	}
	return Notice{Title: string(signal)}
}
