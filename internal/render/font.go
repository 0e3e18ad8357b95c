package render

import (
	"image"
	"image/color"
)

// Minimal 5x7 bitmap glyphs for the handful of uppercase labels the charts
// draw ("NO DATA", "INCOME", "EXPENSE"). Unknown runes render as blanks.
const (
	glyphW     = 5
	glyphH     = 7
	glyphScale = 2
	glyphGap   = 1
)

var glyphs = map[rune][glyphH]string{
	'A': {".###.", "#...#", "#...#", "#####", "#...#", "#...#", "#...#"},
	'C': {".###.", "#...#", "#....", "#....", "#....", "#...#", ".###."},
	'D': {"####.", "#...#", "#...#", "#...#", "#...#", "#...#", "####."},
	'E': {"#####", "#....", "#....", "####.", "#....", "#....", "#####"},
	'I': {"#####", "..#..", "..#..", "..#..", "..#..", "..#..", "#####"},
	'M': {"#...#", "##.##", "#.#.#", "#.#.#", "#...#", "#...#", "#...#"},
	'N': {"#...#", "##..#", "#.#.#", "#..##", "#...#", "#...#", "#...#"},
	'O': {".###.", "#...#", "#...#", "#...#", "#...#", "#...#", ".###."},
	'P': {"####.", "#...#", "#...#", "####.", "#....", "#....", "#...."},
	'S': {".####", "#....", "#....", ".###.", "....#", "....#", "####."},
	'T': {"#####", "..#..", "..#..", "..#..", "..#..", "..#..", "..#.."},
	'X': {"#...#", "#...#", ".#.#.", "..#..", ".#.#.", "#...#", "#...#"},
}

// drawTextCentered draws s centered horizontally on cx and vertically on cy.
func drawTextCentered(img *image.RGBA, cx, cy int, s string, col color.RGBA) {
	runes := []rune(s)
	advance := (glyphW + glyphGap) * glyphScale
	totalW := len(runes)*advance - glyphGap*glyphScale
	x := cx - totalW/2
	y := cy - glyphH*glyphScale/2
	for _, r := range runes {
		drawGlyph(img, x, y, r, col)
		x += advance
	}
}

func drawGlyph(img *image.RGBA, x, y int, r rune, col color.RGBA) {
	g, ok := glyphs[r]
	if !ok {
		return
	}
	for row := 0; row < glyphH; row++ {
		for colIdx := 0; colIdx < glyphW; colIdx++ {
			if g[row][colIdx] != '#' {
				continue
			}
			for dy := 0; dy < glyphScale; dy++ {
				for dx := 0; dx < glyphScale; dx++ {
					img.SetRGBA(x+colIdx*glyphScale+dx, y+row*glyphScale+dy, col)
				}
			}
		}
	}
}
