package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	"github.com/park285/cheese-board/internal/board"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Options controls one render. Selected, when set, is outlined; Caption is
// drawn under the board (usually the "Current Turn" status line).
type Options struct {
	Selected *board.Square
	Caption  string
}

// Renderer draws boards as PNG images.
type Renderer interface {
	RenderPNG(ctx context.Context, b *board.Board, opts Options) ([]byte, error)
}

type pngRenderer struct {
	squareSize int
}

// New returns a Renderer with squareSize pixels per square (64 when <= 0).
func New(squareSize int) Renderer {
	if squareSize <= 0 {
		squareSize = 64
	}
	return &pngRenderer{squareSize: squareSize}
}

const (
	labelMargin   = 24
	captionHeight = 32
)

var (
	lightSquare       = color.RGBA{233, 207, 163, 255}
	darkSquare        = color.RGBA{187, 136, 96, 255}
	backgroundColor   = color.RGBA{28, 31, 46, 255}
	labelColor        = color.RGBA{236, 239, 255, 255}
	selectedFill      = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	selectedBorder    = color.NRGBA{R: 240, G: 180, B: 40, A: 255}
	selectedThickness = 3
)

// Geometry of a render for a given square size.
type layout struct {
	square int
	origin image.Point
	bounds image.Rectangle
}

func newLayout(square int) layout {
	boardSize := square * board.Size
	return layout{
		square: square,
		origin: image.Pt(labelMargin, labelMargin),
		bounds: image.Rect(0, 0, boardSize+labelMargin*2, boardSize+labelMargin*2+captionHeight),
	}
}

func (l layout) squareRect(sq board.Square) image.Rectangle {
	x := l.origin.X + sq.Col*l.square
	y := l.origin.Y + sq.Row*l.square
	return image.Rect(x, y, x+l.square, y+l.square)
}

func (l layout) boardRect() image.Rectangle {
	size := l.square * board.Size
	return image.Rect(l.origin.X, l.origin.Y, l.origin.X+size, l.origin.Y+size)
}

func (r *pngRenderer) RenderPNG(ctx context.Context, b *board.Board, opts Options) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("board is nil")
	}
	if opts.Selected != nil && !opts.Selected.Valid() {
		return nil, fmt.Errorf("selected square out of range: %s", opts.Selected)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := newLayout(r.squareSize)
	img := image.NewRGBA(l.bounds)
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	drawSquares(img, l)
	if opts.Selected != nil {
		drawSelection(img, l, *opts.Selected)
	}
	if err := drawPieces(img, l, b); err != nil {
		return nil, err
	}
	drawCoordinates(img, l)
	drawCaption(img, l, opts.Caption)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func squareColor(sq board.Square) color.Color {
	if sq.IsLight() {
		return lightSquare
	}
	return darkSquare
}

func drawSquares(dst imagedraw.Image, l layout) {
	for row := 0; row < board.Size; row++ {
		for col := 0; col < board.Size; col++ {
			sq := board.Sq(row, col)
			imagedraw.Draw(dst, l.squareRect(sq), image.NewUniform(squareColor(sq)), image.Point{}, imagedraw.Src)
		}
	}
}

func drawSelection(dst imagedraw.Image, l layout, sq board.Square) {
	rect := l.squareRect(sq)
	imagedraw.Draw(dst, rect, image.NewUniform(selectedFill), image.Point{}, imagedraw.Over)
	border := image.NewUniform(selectedBorder)
	t := selectedThickness
	for _, edge := range []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+t),
		image.Rect(rect.Min.X, rect.Max.Y-t, rect.Max.X, rect.Max.Y),
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+t, rect.Max.Y),
		image.Rect(rect.Max.X-t, rect.Min.Y, rect.Max.X, rect.Max.Y),
	} {
		imagedraw.Draw(dst, edge, border, image.Point{}, imagedraw.Over)
	}
}

func drawPieces(dst imagedraw.Image, l layout, b *board.Board) error {
	var firstErr error
	b.Each(func(sq board.Square, p board.Piece) {
		if firstErr != nil {
			return
		}
		img, err := renderPieceImage(p, l.square)
		if err != nil {
			firstErr = err
			return
		}
		imagedraw.Draw(dst, l.squareRect(sq), img, image.Point{}, imagedraw.Over)
	})
	return firstErr
}

// drawCoordinates labels files A-H below the board and ranks 8-1 on the left.
func drawCoordinates(dst imagedraw.Image, l layout) {
	drawer := &font.Drawer{Dst: dst, Face: basicfont.Face7x13, Src: image.NewUniform(labelColor)}
	ascent := basicfont.Face7x13.Metrics().Ascent.Ceil()
	br := l.boardRect()

	for i := 0; i < board.Size; i++ {
		center := l.origin.X + i*l.square + l.square/2
		drawCenteredText(drawer, board.FileLabels[i], center, br.Max.Y+ascent+4)

		middle := l.origin.Y + i*l.square + l.square/2
		drawCenteredText(drawer, board.RankLabels[i], labelMargin/2, middle+ascent/2)
	}
}

func drawCaption(dst imagedraw.Image, l layout, caption string) {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return
	}
	drawer := &font.Drawer{Dst: dst, Face: basicfont.Face7x13, Src: image.NewUniform(labelColor)}
	br := l.boardRect()
	baseline := br.Max.Y + labelMargin + captionHeight/2
	drawCenteredText(drawer, caption, l.bounds.Dx()/2, baseline)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}
