package game

import (
	"log"
	"sync"

	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	fontOnce  sync.Once
	hudFace   text.Face
	titleSize = 15.0
)

// hudTitleFace returns the cached HUD heading face, or nil if the
// embedded font fails to parse (headings are then skipped).
func hudTitleFace() text.Face {
	fontOnce.Do(func() {
		tt, err := opentype.Parse(goregular.TTF)
		if err != nil {
			log.Printf("fonts: parse goregular: %v", err)
			return
		}
		face, err := opentype.NewFace(tt, &opentype.FaceOptions{
			Size:    titleSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			log.Printf("fonts: face goregular: %v", err)
			return
		}
		hudFace = text.NewGoXFace(face)
	})
	return hudFace
}
