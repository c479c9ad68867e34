package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/cheese-hotseat/internal/chess"
)

// BoardOptions carries everything drawn around and over the pieces.
type BoardOptions struct {
	Title    string
	Banner   string // turn or promotion prompt
	Status   string // last outcome, drawn under the board
	Selected *chess.Position
	LastMove *chess.Move
	Overlay  *MenuView // pause or promotion menu drawn over the board
}

// MenuView is a titled list of buttons.
type MenuView struct {
	Title   string
	Buttons []string
}

type Renderer struct {
	layout Layout
	face   font.Face
}

func NewRenderer(layout Layout) *Renderer {
	return &Renderer{layout: layout, face: basicfont.Face7x13}
}

func (r *Renderer) Layout() Layout { return r.layout }

// RenderBoard draws the board, pieces, highlights, HUD and an optional menu overlay as PNG.
func (r *Renderer) RenderBoard(ctx context.Context, board *chess.Board, opts BoardOptions) ([]byte, error) {
	if board == nil {
		return nil, fmt.Errorf("board is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := r.layout
	img := image.NewRGBA(l.Bounds())
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	drawBoardShadow(img, l.BoardRect())
	r.drawHUD(img, board, opts)
	drawSquares(img, l)
	drawLastMove(img, board, opts.LastMove, l)
	if opts.Selected != nil && opts.Selected.Valid() {
		drawSquareOverlay(img, l.SquareRect(*opts.Selected), selectionColor)
	}
	if err := drawPieces(img, board, l); err != nil {
		return nil, err
	}
	r.drawCoordinates(img)
	r.drawStatus(img, opts.Status)

	if opts.Overlay != nil {
		imagedraw.Draw(img, l.BoardRect(), image.NewUniform(overlayDimColor), image.Point{}, imagedraw.Over)
		r.drawMenu(img, *opts.Overlay)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return encodePNG(img)
}

// RenderMenu draws a full-screen menu with the same geometry as the board overlay.
func (r *Renderer) RenderMenu(ctx context.Context, menu MenuView) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img := image.NewRGBA(r.layout.Bounds())
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(menuBackgroundColor), image.Point{}, imagedraw.Src)
	r.drawMenu(img, menu)
	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, error) {
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return pngBuf.Bytes(), nil
}

var (
	backgroundColor     = color.RGBA{R: 20, G: 22, B: 33, A: 255}
	menuBackgroundColor = color.RGBA{R: 28, G: 31, B: 46, A: 255}
	lightSquare         = color.RGBA{233, 207, 163, 255}
	darkSquare          = color.RGBA{187, 136, 96, 255}
	selectionColor      = color.NRGBA{R: 120, G: 200, B: 120, A: 140}
	whiteMoveFill       = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	blackMoveArrow      = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	neutralMoveArrow    = color.NRGBA{R: 182, G: 184, B: 190, A: 140}
	overlayDimColor     = color.NRGBA{0, 0, 0, 140}
	hudPanelColor       = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudTurnPanelColor   = color.NRGBA{R: 32, G: 35, B: 52, A: 245}
	hudShadowColor      = color.NRGBA{0, 0, 0, 50}
	hudTextPrimary      = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTurnTextColor    = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	statusTextColor     = color.NRGBA{R: 255, G: 196, B: 120, A: 255}
	buttonColor         = color.NRGBA{R: 58, G: 64, B: 96, A: 250}
	boardShadowColor    = color.NRGBA{0, 0, 0, 60}
	coordinateTextColor = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

func drawBoardShadow(img *image.RGBA, boardRect image.Rectangle) {
	shadowRect := image.Rect(
		boardRect.Min.X+4,
		boardRect.Min.Y+8,
		boardRect.Max.X+10,
		boardRect.Max.Y+12,
	)
	imagedraw.Draw(img, shadowRect, image.NewUniform(boardShadowColor), image.Point{}, imagedraw.Over)
}

func drawSquares(dst imagedraw.Image, l Layout) {
	for row := 0; row < chess.BoardSize; row++ {
		for col := 0; col < chess.BoardSize; col++ {
			clr := lightSquare
			if (row+col)%2 == 1 {
				clr = darkSquare
			}
			imagedraw.Draw(dst, l.SquareRect(chess.Pos(row, col)), image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(dst imagedraw.Image, board *chess.Board, l Layout) error {
	for row := 0; row < chess.BoardSize; row++ {
		for col := 0; col < chess.BoardSize; col++ {
			p := chess.Pos(row, col)
			sq := board.At(p)
			if sq.IsEmpty() {
				continue
			}
			img, err := renderPieceImage(sq, l.SquareSize)
			if err != nil {
				return err
			}
			imagedraw.Draw(dst, l.SquareRect(p), img, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

// White's last move is shown as filled squares, Black's as an arrow.
func drawLastMove(img *image.RGBA, board *chess.Board, m *chess.Move, l Layout) {
	if m == nil || !m.From.Valid() || !m.To.Valid() {
		return
	}
	mover := board.At(m.To)
	switch {
	case mover.Holds(chess.White):
		drawSquareOverlay(img, l.SquareRect(m.From), whiteMoveFill)
		drawSquareOverlay(img, l.SquareRect(m.To), whiteMoveFill)
	case mover.Holds(chess.Black):
		drawArrow(img, l.SquareRect(m.From), l.SquareRect(m.To), l.SquareSize, blackMoveArrow)
	default:
		drawArrow(img, l.SquareRect(m.From), l.SquareRect(m.To), l.SquareSize, neutralMoveArrow)
	}
}

func drawSquareOverlay(img *image.RGBA, rect image.Rectangle, clr color.Color) {
	imagedraw.Draw(img, rect, image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

const (
	titleHeight          = 40
	secondaryPanelHeight = 32
	gapBetweenPanels     = 14
	gapToBoard           = 22
	panelRadius          = 12
	titlePaddingX        = 28
	scorePaddingX        = 24
	turnPaddingX         = 20
	titleMinWidth        = 220
	scoreMinWidth        = 72
	turnMinWidth         = 140
	shadowOffsetY        = 6
)

func (r *Renderer) drawHUD(img *image.RGBA, board *chess.Board, opts BoardOptions) {
	drawer := &font.Drawer{Dst: img, Face: r.face}
	boardRect := r.layout.BoardRect()

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Hot-Seat Chess"
	}
	scoreText := formatMaterialDiff(materialDiff(board))
	turnText := strings.TrimSpace(opts.Banner)
	if turnText == "" {
		turnText = "Turn"
	}

	turnBottom := boardRect.Min.Y - gapToBoard
	turnTop := turnBottom - secondaryPanelHeight
	titleBottom := turnTop - gapBetweenPanels
	titleTop := titleBottom - titleHeight

	titleWidth := max(titleMinWidth, drawer.MeasureString(title).Round()+titlePaddingX*2)
	scoreWidth := max(scoreMinWidth, drawer.MeasureString(scoreText).Round()+scorePaddingX*2)
	turnWidth := max(turnMinWidth, drawer.MeasureString(turnText).Round()+turnPaddingX*2)

	titleWidth = min(titleWidth, max(titleMinWidth, boardRect.Dx()-scoreWidth-24))
	turnWidth = min(turnWidth, boardRect.Dx()-40)

	titleRect := image.Rect(boardRect.Min.X, titleTop, boardRect.Min.X+titleWidth, titleBottom)
	scoreRect := image.Rect(boardRect.Max.X-scoreWidth, titleTop+titleHeight-secondaryPanelHeight, boardRect.Max.X, titleBottom)
	turnLeft := boardRect.Min.X + (boardRect.Dx()-turnWidth)/2
	turnRect := image.Rect(turnLeft, turnTop, turnLeft+turnWidth, turnBottom)

	for _, rect := range []image.Rectangle{titleRect, scoreRect, turnRect} {
		drawRoundedPanel(img, rect.Add(image.Pt(0, shadowOffsetY)), panelRadius, hudShadowColor)
	}

	title = truncateWithEllipsis(r.face, title, titleRect.Dx()-titlePaddingX*2)
	turnText = truncateWithEllipsis(r.face, turnText, turnRect.Dx()-turnPaddingX*2)

	drawRoundedPanel(img, titleRect, panelRadius, hudPanelColor)
	drawRoundedPanel(img, scoreRect, panelRadius, hudPanelColor)
	drawRoundedPanel(img, turnRect, panelRadius, hudTurnPanelColor)

	drawCenteredString(drawer, titleRect, title, hudTextPrimary)
	drawCenteredString(drawer, scoreRect, scoreText, hudTextPrimary)
	drawCenteredString(drawer, turnRect, turnText, hudTurnTextColor)
}

func (r *Renderer) drawStatus(img *image.RGBA, status string) {
	status = strings.TrimSpace(status)
	if status == "" {
		return
	}
	board := r.layout.BoardRect()
	rect := image.Rect(board.Min.X, board.Max.Y+24, board.Max.X, img.Bounds().Max.Y-4)
	drawer := &font.Drawer{Dst: img, Face: r.face}
	drawCenteredString(drawer, rect, truncateWithEllipsis(r.face, status, rect.Dx()), statusTextColor)
}

func (r *Renderer) drawMenu(img *image.RGBA, menu MenuView) {
	l := r.layout
	drawer := &font.Drawer{Dst: img, Face: r.face}
	if title := strings.TrimSpace(menu.Title); title != "" {
		drawCenteredString(drawer, l.menuTitleRect(len(menu.Buttons)), title, hudTextPrimary)
	}
	for i, rect := range l.ButtonRects(len(menu.Buttons)) {
		drawRoundedPanel(img, rect.Add(image.Pt(0, shadowOffsetY/2)), panelRadius, hudShadowColor)
		drawRoundedPanel(img, rect, panelRadius, buttonColor)
		label := fmt.Sprintf("%d  %s", i+1, menu.Buttons[i])
		drawCenteredString(drawer, rect, truncateWithEllipsis(r.face, label, rect.Dx()-turnPaddingX), hudTextPrimary)
	}
}

// Row and column indices, matching the API's (row, col) addressing.
func (r *Renderer) drawCoordinates(img *image.RGBA) {
	l := r.layout
	drawer := &font.Drawer{Dst: img, Face: r.face, Src: image.NewUniform(coordinateTextColor)}
	ascent := r.face.Metrics().Ascent.Ceil()
	board := l.BoardRect()
	for i := 0; i < chess.BoardSize; i++ {
		center := i*l.SquareSize + l.SquareSize/2
		drawCenteredText(drawer, strconv.Itoa(i), board.Min.X-sideMargin/2, board.Min.Y+center+ascent/2)
		drawCenteredText(drawer, strconv.Itoa(i), board.Min.X+center, board.Max.Y+ascent+4)
	}
}

var pieceValues = map[chess.PieceKind]int{
	chess.Pawn:   1,
	chess.Knight: 3,
	chess.Bishop: 3,
	chess.Rook:   5,
	chess.Queen:  9,
}

// materialDiff is White's material minus Black's.
func materialDiff(b *chess.Board) int {
	diff := 0
	for row := 0; row < chess.BoardSize; row++ {
		for col := 0; col < chess.BoardSize; col++ {
			sq := b.At(chess.Pos(row, col))
			switch {
			case sq.Holds(chess.White):
				diff += pieceValues[sq.Kind]
			case sq.Holds(chess.Black):
				diff -= pieceValues[sq.Kind]
			}
		}
	}
	return diff
}

func formatMaterialDiff(diff int) string {
	if diff == 0 {
		return "0"
	}
	return fmt.Sprintf("%+d", diff)
}

func drawArrow(img *image.RGBA, fromRect, toRect image.Rectangle, squareSize int, clr color.Color) {
	if fromRect == toRect {
		return
	}
	start := image.Pt(fromRect.Min.X+squareSize/2, fromRect.Min.Y+squareSize/2)
	end := image.Pt(toRect.Min.X+squareSize/2, toRect.Min.Y+squareSize/2)

	dx := float64(end.X - start.X)
	dy := float64(end.Y - start.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}

	dirX := dx / length
	dirY := dy / length
	perpX := -dirY
	perpY := dirX

	baseLength := length - float64(squareSize)*0.45
	if baseLength < float64(squareSize)*0.35 {
		baseLength = length * 0.6
	}
	halfWidth := float64(squareSize) * 0.18
	headWidth := float64(squareSize) * 0.32

	baseX := float64(start.X) + dirX*baseLength
	baseY := float64(start.Y) + dirY*baseLength

	fillQuad(img,
		pointF{float64(start.X) - perpX*halfWidth, float64(start.Y) - perpY*halfWidth},
		pointF{float64(start.X) + perpX*halfWidth, float64(start.Y) + perpY*halfWidth},
		pointF{baseX + perpX*halfWidth, baseY + perpY*halfWidth},
		pointF{baseX - perpX*halfWidth, baseY - perpY*halfWidth},
		clr)
	fillTriangleF(img,
		pointF{float64(end.X), float64(end.Y)},
		pointF{baseX - perpX*headWidth/2, baseY - perpY*headWidth/2},
		pointF{baseX + perpX*headWidth/2, baseY + perpY*headWidth/2},
		clr)
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || maxWidth <= 0 || face == nil {
		return trimmed
	}

	drawer := font.Drawer{Face: face}
	if drawer.MeasureString(trimmed).Round() <= maxWidth {
		return trimmed
	}

	ellipsis := "..."
	if drawer.MeasureString(ellipsis).Round() > maxWidth {
		return ""
	}

	runes := []rune(trimmed)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + ellipsis
		if drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := max(rect.Min.X, rect.Min.X+(rect.Dx()-width)/2)
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}
