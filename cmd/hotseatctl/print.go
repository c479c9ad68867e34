package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/park285/cheese-hotseat/internal/hotseatclient"
	"github.com/park285/cheese-hotseat/pkg/hotseatdto"
)

const (
	lightSquare = color.BgHiWhite
	darkSquare  = color.BgHiBlack
	selected    = color.BgYellow
	lastMove    = color.BgGreen
	whitePiece  = color.FgHiBlue
	blackPiece  = color.FgRed
)

var (
	bannerStyle = color.New(color.FgCyan, color.Bold)
	statusStyle = color.New(color.FgYellow)
	menuStyle   = color.New(color.FgMagenta)
	errStyle    = color.New(color.FgRed)
)

func printState(w io.Writer, st *hotseatdto.State) {
	bannerStyle.Fprintf(w, "%s  [%s, move %d]\n", st.Banner, st.Screen, st.MoveCount)
	printBoard(w, st)
	if st.Status != "" {
		statusStyle.Fprintln(w, st.Status)
	}
	if st.Menu != nil {
		menuStyle.Fprintf(w, "%s:", st.Menu.Title)
		for i, label := range st.Menu.Labels {
			menuStyle.Fprintf(w, "  %d) %s", i, label)
		}
		fmt.Fprintln(w)
	}
	if st.Slot != "" {
		fmt.Fprintf(w, "slot: %s\n", st.Slot)
	}
}

func printBoard(w io.Writer, st *hotseatdto.State) {
	fmt.Fprintln(w, "    0  1  2  3  4  5  6  7")
	for r, row := range st.Rows {
		fmt.Fprintf(w, " %d ", r)
		for c := 0; c < len(row); c++ {
			bg := lightSquare
			if (r+c)%2 == 1 {
				bg = darkSquare
			}
			switch {
			case st.Selected != nil && st.Selected.Row == r && st.Selected.Col == c:
				bg = selected
			case st.LastMove != nil && (st.LastMove.To == hotseatdto.Position{Row: r, Col: c} || st.LastMove.From == hotseatdto.Position{Row: r, Col: c}):
				bg = lastMove
			}
			cell := " " + pieceGlyph(row[c]) + " "
			fg := whitePiece
			if row[c] >= 'a' && row[c] <= 'z' {
				fg = blackPiece
			}
			color.New(fg, bg, color.Bold).Fprint(w, cell)
		}
		fmt.Fprintln(w)
	}
}

func pieceGlyph(b byte) string {
	if b == '.' {
		return " "
	}
	return strings.ToUpper(string(b))
}

func printError(w io.Writer, err error) {
	var apiErr *hotseatclient.APIError
	if errors.As(err, &apiErr) {
		errStyle.Fprintf(w, "refused (%s): %s\n", apiErr.Code, apiErr.Message)
		return
	}
	errStyle.Fprintf(w, "error: %v\n", err)
}
