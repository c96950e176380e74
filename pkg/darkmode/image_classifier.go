package darkmode

import (
	"image"
	"image/color"
	"math"
)

const (
	maxSampledPixels = 1000
	maxBlocks        = 10

	// A block whose opaque samples exceed this share of its quota counts as
	// foreground.
	minOpaquePixelRatioForForeground = 0.2
	// Samples with alpha below this are transparent.
	opaqueAlphaThreshold = 128

	// Channel delta sum above which a sample is considered colored.
	colorfulDeltaThreshold = 8
	// Share of colored samples above which the image is colorful.
	minColorfulSampleRatio = 0.01
)

// Decision tree {low, high} thresholds on Features.ColorBucketsRatio. The
// grayscale pair is relative to 16 luminance buckets, the colorful pair to
// 4096 color buckets.
var (
	grayscaleThresholds = [2]float32{0.8125, 1.0}
	colorfulThresholds  = [2]float32{0.015137, 0.025635}
)

// Features summarizes the sampled pixels of an image region.
type Features struct {
	IsColorful bool
	// Distinct color buckets seen over the number of possible buckets: 4096
	// (4 bits per channel) for colorful images, 16 (4-bit luminance) otherwise.
	ColorBucketsRatio float32
	// Transparent samples over all samples.
	TransparencyRatio float32
	// 1 - foreground blocks / total blocks.
	BackgroundRatio float32
}

// Vector returns the features in model input order.
func (f Features) Vector() [4]float32 {
	var colorful float32
	if f.IsColorful {
		colorful = 1
	}
	return [4]float32{colorful, f.ColorBucketsRatio, f.TransparencyRatio, f.BackgroundRatio}
}

// InferenceModel scores features the decision tree could not settle. A
// positive result means apply the filter.
type InferenceModel interface {
	Infer(features [4]float32) float32
}

// ImageClassifier decides whether an image looks like an icon or other
// simple graphic (apply the filter) or like a photo (leave it alone).
type ImageClassifier struct {
	model InferenceModel
}

// NewImageClassifier returns a classifier that falls back to model, or to
// DefaultModel when model is nil.
func NewImageClassifier(model InferenceModel) *ImageClassifier {
	if model == nil {
		model = DefaultModel()
	}
	return &ImageClassifier{model: model}
}

// Classify inspects the src region of pixmap.
func (c *ImageClassifier) Classify(pixmap image.Image, src image.Rectangle) Classification {
	if pixmap == nil {
		return DoNotApplyFilter
	}
	bounds := pixmap.Bounds()
	if bounds.Empty() || src.Empty() || !src.In(bounds) {
		return DoNotApplyFilter
	}

	features, ok := c.GetFeatures(pixmap, src)
	if !ok {
		return DoNotApplyFilter
	}
	if result := ClassifyUsingDecisionTree(features); result != NotClassified {
		return result
	}
	if c.model.Infer(features.Vector()) > 0 {
		return ApplyFilter
	}
	return DoNotApplyFilter
}

// GetFeatures samples src and computes its Features. It reports false when
// every sample was transparent.
func (c *ImageClassifier) GetFeatures(pixmap image.Image, src image.Rectangle) (Features, bool) {
	samples, transparencyRatio, backgroundRatio := getSamples(pixmap, src)
	if len(samples) == 0 {
		return Features{}, false
	}
	return computeFeatures(samples, transparencyRatio, backgroundRatio), true
}

// ClassifyUsingDecisionTree settles clear-cut cases: few distinct colors
// mean a graphic, many mean a photo.
func ClassifyUsingDecisionTree(f Features) Classification {
	thresholds := grayscaleThresholds
	if f.IsColorful {
		thresholds = colorfulThresholds
	}
	if f.ColorBucketsRatio < thresholds[0] {
		return ApplyFilter
	}
	if f.ColorBucketsRatio > thresholds[1] {
		return DoNotApplyFilter
	}
	return NotClassified
}

func getSamples(pixmap image.Image, src image.Rectangle) (samples []color.NRGBA, transparencyRatio, backgroundRatio float32) {
	w, h := src.Dx(), src.Dy()
	sampleCount := min(maxSampledPixels, w*h)
	blocksX := min(maxBlocks, w)
	blocksY := min(maxBlocks, h)
	numBlocks := blocksX * blocksY
	perBlock := sampleCount / numBlocks

	gridX := make([]int, blocksX+1)
	gridY := make([]int, blocksY+1)
	blockW := float64(w) / float64(blocksX)
	blockH := float64(h) / float64(blocksY)
	for i := range gridX {
		gridX[i] = src.Min.X + int(math.Round(blockW*float64(i)))
	}
	for i := range gridY {
		gridY[i] = src.Min.Y + int(math.Round(blockH*float64(i)))
	}

	var transparent, opaque, foregroundBlocks int
	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			block := image.Rect(gridX[bx], gridY[by], gridX[bx+1], gridY[by+1])
			before := len(samples)
			var blockTransparent int
			samples, blockTransparent = getBlockSamples(pixmap, block, perBlock, samples)
			blockOpaque := len(samples) - before
			opaque += blockOpaque
			transparent += blockTransparent
			if float64(blockOpaque) > minOpaquePixelRatioForForeground*float64(perBlock) {
				foregroundBlocks++
			}
		}
	}

	if total := transparent + opaque; total > 0 {
		transparencyRatio = float32(transparent) / float32(total)
	}
	backgroundRatio = 1 - float32(foregroundBlocks)/float32(numBlocks)
	return samples, transparencyRatio, backgroundRatio
}

// getBlockSamples samples block on a grid yielding about quota points and
// appends the opaque ones to samples.
func getBlockSamples(pixmap image.Image, block image.Rectangle, quota int, samples []color.NRGBA) ([]color.NRGBA, int) {
	if block.Empty() || quota <= 0 {
		return samples, 0
	}
	step := math.Sqrt(float64(quota))
	cx := max(1, int(math.Ceil(float64(block.Dx())/step)))
	cy := max(1, int(math.Ceil(float64(block.Dy())/step)))

	transparent := 0
	for y := block.Min.Y; y < block.Max.Y; y += cy {
		for x := block.Min.X; x < block.Max.X; x += cx {
			px := color.NRGBAModel.Convert(pixmap.At(x, y)).(color.NRGBA)
			if px.A < opaqueAlphaThreshold {
				transparent++
				continue
			}
			samples = append(samples, px)
		}
	}
	return samples, transparent
}

func computeFeatures(samples []color.NRGBA, transparencyRatio, backgroundRatio float32) Features {
	colored := 0
	for _, s := range samples {
		r, g, b := int(s.R), int(s.G), int(s.B)
		if abs(r-g)+abs(g-b)+abs(b-r) > colorfulDeltaThreshold {
			colored++
		}
	}
	isColorful := float64(colored) > minColorfulSampleRatio*float64(len(samples))

	return Features{
		IsColorful:        isColorful,
		ColorBucketsRatio: colorBucketsRatio(samples, isColorful),
		TransparencyRatio: transparencyRatio,
		BackgroundRatio:   backgroundRatio,
	}
}

func colorBucketsRatio(samples []color.NRGBA, colorful bool) float32 {
	buckets := make(map[uint16]struct{})
	if colorful {
		for _, s := range samples {
			buckets[uint16(s.R>>4)<<8|uint16(s.G>>4)<<4|uint16(s.B>>4)] = struct{}{}
		}
		return float32(len(buckets)) / 4096
	}
	for _, s := range samples {
		illumination := (int(s.R)*5 + int(s.G)*3 + int(s.B)*2) / 10
		buckets[uint16(illumination/16)] = struct{}{}
	}
	return float32(len(buckets)) / 16
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
