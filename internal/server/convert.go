package server

import (
	"github.com/park285/cheese-hotseat/internal/app"
	"github.com/park285/cheese-hotseat/internal/chess"
	"github.com/park285/cheese-hotseat/pkg/hotseatdto"
)

func toPos(p chess.Position) hotseatdto.Position {
	return hotseatdto.Position{Row: p.Row, Col: p.Col}
}

func toPosPtr(p *chess.Position) *hotseatdto.Position {
	if p == nil {
		return nil
	}
	d := toPos(*p)
	return &d
}

// ToState converts an app update into its wire form.
func ToState(u app.Update) *hotseatdto.State {
	st := &hotseatdto.State{
		Screen:     u.State.String(),
		Rows:       chess.EncodeRows(u.Board),
		SideToMove: u.SideToMove.String(),
		Selected:   toPosPtr(u.Selected),
		Pending:    toPosPtr(u.Pending),
		MoveCount:  u.MoveCount,
		Banner:     u.Banner,
		Status:     u.Status,
		Slot:       u.Slot,
		Quit:       u.Quit,
	}
	if u.LastMove != nil {
		st.LastMove = &hotseatdto.Move{From: toPos(u.LastMove.From), To: toPos(u.LastMove.To)}
	}
	if u.Menu != nil {
		m := &hotseatdto.Menu{Title: u.Menu.Title, Labels: u.Menu.Labels}
		for _, b := range u.Menu.Buttons {
			m.Buttons = append(m.Buttons, string(b))
		}
		st.Menu = m
	}
	for _, e := range u.Events {
		st.Events = append(st.Events, toEvent(e))
	}
	for _, c := range u.Cues {
		st.Cues = append(st.Cues, string(c))
	}
	return st
}

func toEvent(e chess.Event) hotseatdto.Event {
	out := hotseatdto.Event{Kind: e.Kind.String()}
	switch e.Kind {
	case chess.EventPieceSelected:
		out.From = toPosPtr(&e.From)
	case chess.EventMoveRejected, chess.EventMoveApplied:
		out.From = toPosPtr(&e.From)
		out.To = toPosPtr(&e.To)
	case chess.EventPromotionRequired, chess.EventPromotionApplied, chess.EventNoOp:
		out.To = toPosPtr(&e.To)
	}
	if !e.Piece.IsEmpty() {
		out.Piece = e.Piece.String()
	}
	if !e.Captured.IsEmpty() {
		out.Captured = e.Captured.String()
	}
	return out
}
