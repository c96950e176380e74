package images

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"framecore/pkg/darkmode"
)

// Image is a decoded bitmap with one or more frames. Animated GIFs are
// composited up front, so every frame is a full canvas.
type Image struct {
	frames    []image.Image
	delays    []time.Duration
	loopCount int
	current   int
	format    string

	// Animation clock: when the current frame went up, and how many times
	// the last frame has wrapped around.
	frameStart time.Time
	loopsDone  int
	finished   bool

	// Dark mode decisions for the current frame, keyed by source rect.
	classifications map[image.Rectangle]darkmode.Classification
}

// Decode reads an image in any registered format.
func Decode(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image config: %w", err)
	}
	if format == "gif" {
		g, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding gif: %w", err)
		}
		return fromGIF(g), nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}
	return FromImage(img, format), nil
}

// FromImage wraps a single still frame.
func FromImage(img image.Image, format string) *Image {
	return &Image{
		frames:          []image.Image{img},
		delays:          []time.Duration{0},
		format:          format,
		classifications: map[image.Rectangle]darkmode.Classification{},
	}
}

// fromGIF composites every frame of g onto its logical screen, honoring the
// disposal method of the frame before.
func fromGIF(g *gif.GIF) *Image {
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() && len(g.Image) > 0 {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewNRGBA(bounds)
	img := &Image{
		loopCount:       g.LoopCount,
		format:          "gif",
		classifications: map[image.Rectangle]darkmode.Classification{},
	}

	for i, frame := range g.Image {
		var previous *image.NRGBA
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			previous = cloneNRGBA(canvas)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		img.frames = append(img.frames, cloneNRGBA(canvas))

		delay := time.Duration(0)
		if i < len(g.Delay) {
			delay = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		img.delays = append(img.delays, delay)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}
	return img
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// Format is the name of the decoder that read the image.
func (img *Image) Format() string { return img.format }

// Bounds of the canvas.
func (img *Image) Bounds() image.Rectangle { return img.frames[0].Bounds() }

// FrameCount is the number of frames; 1 for still images.
func (img *Image) FrameCount() int { return len(img.frames) }

// IsAnimated reports whether there is more than one frame.
func (img *Image) IsAnimated() bool { return len(img.frames) > 1 }

// LoopCount is the GIF loop count: 0 loops forever, -1 plays once.
func (img *Image) LoopCount() int { return img.loopCount }

// CurrentFrameIndex returns the index of the frame being shown.
func (img *Image) CurrentFrameIndex() int { return img.current }

// CurrentFrame returns the pixels of the frame being shown.
func (img *Image) CurrentFrame() image.Image { return img.frames[img.current] }

// Frame returns frame i.
func (img *Image) Frame(i int) image.Image { return img.frames[i] }

// FrameDelay is how long frame i stays on screen.
func (img *Image) FrameDelay(i int) time.Duration { return img.delays[i] }

// AdvanceFrame moves to the next frame, wrapping at the end. Classifications
// made for the old frame no longer apply and are dropped.
func (img *Image) AdvanceFrame() {
	if len(img.frames) < 2 {
		return
	}
	img.current = (img.current + 1) % len(img.frames)
	clear(img.classifications)
}

// Frames with a delay at or below shortFrameDelay stay up for minFrameDelay.
const (
	shortFrameDelay = 10 * time.Millisecond
	minFrameDelay   = 100 * time.Millisecond
)

func (img *Image) frameDuration(i int) time.Duration {
	if d := img.delays[i]; d > shortFrameDelay {
		return d
	}
	return minFrameDelay
}

// canRepeat reports whether the animation may wrap after its last frame.
func (img *Image) canRepeat() bool {
	switch {
	case img.loopCount == 0:
		return true
	case img.loopCount < 0:
		return false
	}
	return img.loopsDone < img.loopCount
}

// Animate moves the animation forward to now. It reports whether the shown
// frame changed and, while the animation is still running, when the next
// frame is due. The first call starts the clock. Once the loop count is
// used up the last frame stays on screen.
func (img *Image) Animate(now time.Time) (changed bool, next time.Time, running bool) {
	if !img.IsAnimated() || img.finished {
		return false, time.Time{}, false
	}
	if img.frameStart.IsZero() {
		img.frameStart = now
	}
	for steps := 0; ; steps++ {
		due := img.frameStart.Add(img.frameDuration(img.current))
		if now.Before(due) {
			return changed, due, true
		}
		last := img.current == len(img.frames)-1
		if last && !img.canRepeat() {
			img.finished = true
			return changed, time.Time{}, false
		}
		if steps >= len(img.frames) {
			// Too far behind to replay every missed frame.
			due = now
		}
		if last {
			img.loopsDone++
		}
		img.AdvanceFrame()
		img.frameStart = due
		changed = true
	}
}

// DarkModeClassification returns the cached decision for src, if any.
func (img *Image) DarkModeClassification(src image.Rectangle) (darkmode.Classification, bool) {
	c, ok := img.classifications[src]
	return c, ok
}

// SetDarkModeClassification caches the decision for src.
func (img *Image) SetDarkModeClassification(src image.Rectangle, c darkmode.Classification) {
	img.classifications[src] = c
}
