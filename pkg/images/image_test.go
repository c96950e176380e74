package images

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framecore/pkg/darkmode"
)

var (
	opaqueRed  = color.NRGBA{255, 0, 0, 255}
	opaqueBlue = color.NRGBA{0, 0, 255, 255}

	testPalette = color.Palette{opaqueRed, opaqueBlue}
)

func paletted(r image.Rectangle, c color.Color) *image.Paletted {
	p := image.NewPaletted(r, testPalette)
	idx := uint8(testPalette.Index(c))
	for i := range p.Pix {
		p.Pix[i] = idx
	}
	return p
}

// encodeGIF builds a 4x4 animation: a red full frame, then a blue 2x2 patch
// in the top-left corner that is disposed to the background.
func encodeGIF(t *testing.T) []byte {
	t.Helper()
	g := &gif.GIF{
		Image: []*image.Paletted{
			paletted(image.Rect(0, 0, 4, 4), opaqueRed),
			paletted(image.Rect(0, 0, 2, 2), opaqueBlue),
			paletted(image.Rect(2, 2, 4, 4), opaqueBlue),
		},
		Delay:     []int{10, 20, 30},
		Disposal:  []byte{gif.DisposalNone, gif.DisposalBackground, gif.DisposalNone},
		LoopCount: 0,
		Config:    image.Config{Width: 4, Height: 4},
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	return buf.Bytes()
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestDecodeAnimatedGIF(t *testing.T) {
	img, err := Decode(bytes.NewReader(encodeGIF(t)))
	require.NoError(t, err)

	assert.Equal(t, "gif", img.Format())
	require.Equal(t, 3, img.FrameCount())
	assert.True(t, img.IsAnimated())
	assert.Equal(t, 100*time.Millisecond, img.FrameDelay(0))
	assert.Equal(t, 300*time.Millisecond, img.FrameDelay(2))

	assert.Equal(t, opaqueRed, nrgbaAt(img.Frame(0), 0, 0))
	assert.Equal(t, opaqueBlue, nrgbaAt(img.Frame(1), 0, 0))
	assert.Equal(t, opaqueRed, nrgbaAt(img.Frame(1), 3, 3))

	// The blue patch of frame 1 was disposed to transparent.
	assert.Equal(t, uint8(0), nrgbaAt(img.Frame(2), 0, 0).A)
	assert.Equal(t, opaqueBlue, nrgbaAt(img.Frame(2), 3, 3))
	assert.Equal(t, opaqueRed, nrgbaAt(img.Frame(2), 3, 0))
}

func TestAdvanceFrameClearsClassifications(t *testing.T) {
	img, err := Decode(bytes.NewReader(encodeGIF(t)))
	require.NoError(t, err)

	src := image.Rect(0, 0, 4, 4)
	img.SetDarkModeClassification(src, darkmode.ApplyFilter)
	c, ok := img.DarkModeClassification(src)
	require.True(t, ok)
	assert.Equal(t, darkmode.ApplyFilter, c)

	img.AdvanceFrame()
	assert.Equal(t, 1, img.CurrentFrameIndex())
	_, ok = img.DarkModeClassification(src)
	assert.False(t, ok)

	img.AdvanceFrame()
	img.AdvanceFrame()
	assert.Equal(t, 0, img.CurrentFrameIndex(), "wraps after the last frame")
}

func TestStillImageDoesNotAdvance(t *testing.T) {
	img := FromImage(image.NewNRGBA(image.Rect(0, 0, 3, 3)), "png")
	src := image.Rect(0, 0, 3, 3)
	img.SetDarkModeClassification(src, darkmode.DoNotApplyFilter)
	img.AdvanceFrame()

	assert.Equal(t, 0, img.CurrentFrameIndex())
	assert.False(t, img.IsAnimated())
	_, ok := img.DarkModeClassification(src)
	assert.True(t, ok)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("hello")))
	assert.Error(t, err)
}

// encodeLoopingGIF builds a 2x2 red/blue animation with 50ms frames.
func encodeLoopingGIF(t *testing.T, loopCount int) *Image {
	t.Helper()
	g := &gif.GIF{
		Image: []*image.Paletted{
			paletted(image.Rect(0, 0, 2, 2), opaqueRed),
			paletted(image.Rect(0, 0, 2, 2), opaqueBlue),
		},
		Delay:     []int{5, 5},
		LoopCount: loopCount,
		Config:    image.Config{Width: 2, Height: 2},
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	img, err := Decode(&buf)
	require.NoError(t, err)
	return img
}

func TestAnimateFollowsFrameDelays(t *testing.T) {
	img := encodeLoopingGIF(t, 0)
	start := time.Unix(100, 0)

	changed, next, running := img.Animate(start)
	assert.False(t, changed)
	assert.True(t, running)
	assert.Equal(t, start.Add(50*time.Millisecond), next)

	changed, _, _ = img.Animate(start.Add(49 * time.Millisecond))
	assert.False(t, changed)
	assert.Equal(t, 0, img.CurrentFrameIndex())

	changed, next, running = img.Animate(start.Add(50 * time.Millisecond))
	assert.True(t, changed)
	assert.True(t, running)
	assert.Equal(t, 1, img.CurrentFrameIndex())
	assert.Equal(t, start.Add(100*time.Millisecond), next)

	// Loops forever.
	changed, _, running = img.Animate(start.Add(100 * time.Millisecond))
	assert.True(t, changed)
	assert.True(t, running)
	assert.Equal(t, 0, img.CurrentFrameIndex())
}

func TestAnimateRespectsLoopCount(t *testing.T) {
	for _, tc := range []struct {
		name      string
		loopCount int
		plays     int
	}{
		{"once", -1, 1},
		{"twice", 1, 2},
		{"three times", 2, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			img := encodeLoopingGIF(t, tc.loopCount)
			now := time.Unix(100, 0)
			img.Animate(now)

			changes := 0
			for i := 0; i < 20; i++ {
				now = now.Add(50 * time.Millisecond)
				changed, _, running := img.Animate(now)
				if changed {
					changes++
				}
				if !running {
					break
				}
			}
			assert.Equal(t, 2*tc.plays-1, changes)
			assert.Equal(t, 1, img.CurrentFrameIndex(), "stops on the last frame")

			changed, _, running := img.Animate(now.Add(time.Second))
			assert.False(t, changed)
			assert.False(t, running)
		})
	}
}

func TestAnimateSkipsAheadWhenFarBehind(t *testing.T) {
	img := encodeLoopingGIF(t, 0)
	start := time.Unix(100, 0)
	img.Animate(start)

	late := start.Add(time.Hour)
	changed, next, running := img.Animate(late)
	assert.True(t, changed)
	assert.True(t, running)
	assert.Equal(t, late.Add(50*time.Millisecond), next)
}

func TestAnimateZeroDelayUsesMinimum(t *testing.T) {
	g := &gif.GIF{
		Image: []*image.Paletted{
			paletted(image.Rect(0, 0, 1, 1), opaqueRed),
			paletted(image.Rect(0, 0, 1, 1), opaqueBlue),
		},
		Delay:  []int{0, 0},
		Config: image.Config{Width: 1, Height: 1},
	}
	img := fromGIF(g)
	start := time.Unix(100, 0)
	_, next, running := img.Animate(start)
	assert.True(t, running)
	assert.Equal(t, start.Add(100*time.Millisecond), next)
}

func TestStillImageDoesNotAnimate(t *testing.T) {
	img := FromImage(image.NewNRGBA(image.Rect(0, 0, 1, 1)), "png")
	changed, _, running := img.Animate(time.Unix(1, 0))
	assert.False(t, changed)
	assert.False(t, running)
}
