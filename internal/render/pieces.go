package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/park285/cheese-board/internal/board"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Piece outlines on a 45x45 canvas. {{F}} and {{S}} are replaced with the
// fill and stroke colors of the side being drawn.
var pieceShapes = map[board.PieceKind]string{
	board.Pawn: `<circle cx="22.5" cy="13" r="5"/>
<path d="M17 20 L28 20 L31 33 L14 33 Z"/>
<rect x="11" y="33" width="23" height="5"/>`,
	board.Rook: `<rect x="11" y="9" width="5" height="6"/><rect x="20" y="9" width="5" height="6"/><rect x="29" y="9" width="5" height="6"/>
<rect x="11" y="15" width="23" height="4"/>
<rect x="14" y="19" width="17" height="14"/>
<rect x="9" y="33" width="27" height="5"/>`,
	board.Knight: `<path d="M14 38 L33 38 L31 24 C31 14 26 9 19 8 L17 11 L13 14 L10 21 L13 24 L18 21 L20 23 Z"/>
<circle cx="17" cy="15" r="1.5"/>`,
	board.Bishop: `<circle cx="22.5" cy="8" r="2.5"/>
<path d="M22.5 11 C16 16 15 24 17 30 L28 30 C30 24 29 16 22.5 11 Z"/>
<rect x="12" y="32" width="21" height="6"/>`,
	board.Queen: `<circle cx="8" cy="12" r="2.5"/><circle cx="15" cy="9" r="2.5"/><circle cx="22.5" cy="8" r="2.5"/><circle cx="30" cy="9" r="2.5"/><circle cx="37" cy="12" r="2.5"/>
<path d="M9 14 L14 28 L15 12 L20 27 L22.5 11 L25 27 L30 12 L31 28 L36 14 L33 32 L12 32 Z"/>
<rect x="11" y="32" width="23" height="6"/>`,
	board.King: `<rect x="21" y="4" width="3" height="10"/><rect x="17" y="7" width="11" height="3"/>
<path d="M22.5 14 C14 14 9 19 11 26 L14 32 L31 32 L34 26 C36 19 31 14 22.5 14 Z"/>
<rect x="11" y="32" width="23" height="6"/>`,
}

var pieceColors = map[board.Color][2]string{
	board.White: {"#ffffff", "#1c1c1c"},
	board.Black: {"#2b2b2b", "#0a0a0a"},
}

func pieceSVG(p board.Piece) string {
	shape, ok := pieceShapes[p.Kind]
	if !ok {
		return ""
	}
	c := pieceColors[p.Color]
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45" width="45" height="45">
<g fill="%s" stroke="%s" stroke-width="1.5" stroke-linejoin="round">
%s
</g>
</svg>`, c[0], c[1], shape)
}

type pieceCacheKey struct {
	piece board.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func renderPieceImage(p board.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: p, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	src := pieceSVG(p)
	if src == "" {
		return nil, fmt.Errorf("no outline for %s", p)
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg %s: %w", p, err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}
