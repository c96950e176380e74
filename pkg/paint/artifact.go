package paint

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"

	"framecore/pkg/geom"
)

// ItemKind identifies what a display item drew.
type ItemKind int

const (
	ItemRect ItemKind = iota
	ItemStroke
	ItemPath
	ItemGradient
	ItemText
	ItemImage
)

func (k ItemKind) String() string {
	switch k {
	case ItemRect:
		return "rect"
	case ItemStroke:
		return "stroke"
	case ItemPath:
		return "path"
	case ItemGradient:
		return "gradient"
	case ItemText:
		return "text"
	case ItemImage:
		return "image"
	}
	return "unknown"
}

// DisplayItem records one draw call. Bounds are in device space; Color is
// the color actually painted, after dark mode.
type DisplayItem struct {
	Kind     ItemKind
	Bounds   geom.Rect
	Color    color.NRGBA
	Filtered bool
}

// Artifact is the output of one paint phase. Throttled names the frames
// whose contents were left out.
type Artifact struct {
	Image     image.Image
	Items     []DisplayItem
	Throttled []string
}

// SavePNG writes the painted image to path.
func (a *Artifact) SavePNG(path string) error {
	if err := gg.SavePNG(path, a.Image); err != nil {
		return fmt.Errorf("saving paint artifact: %w", err)
	}
	return nil
}

// EncodePNG writes the painted image to w.
func (a *Artifact) EncodePNG(w io.Writer) error {
	dc := gg.NewContextForImage(a.Image)
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encoding paint artifact: %w", err)
	}
	return nil
}

// Compositor receives finished artifacts. Commit must not block and its
// caller does not wait for any result.
type Compositor interface {
	Commit(a *Artifact)
}
