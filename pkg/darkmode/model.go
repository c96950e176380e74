package darkmode

// FeedForwardModel is a dense network with one ReLU hidden layer and a
// linear scalar output.
type FeedForwardModel struct {
	HiddenWeights [][4]float32
	HiddenBias    []float32
	OutputWeights []float32
	OutputBias    float32
}

// Infer evaluates the network on the ordered features
// {is_colorful, color_buckets_ratio, transparency_ratio, background_ratio}.
func (m *FeedForwardModel) Infer(features [4]float32) float32 {
	out := m.OutputBias
	for i, w := range m.HiddenWeights {
		h := m.HiddenBias[i]
		for j := range features {
			h += w[j] * features[j]
		}
		if h > 0 {
			out += m.OutputWeights[i] * h
		}
	}
	return out
}

// DefaultModel returns the fixed model used when none is injected. Its three
// hidden units respond to transparent surroundings, mostly-empty blocks and
// color diversity; the first two vote for the filter and the last against.
func DefaultModel() *FeedForwardModel {
	return &FeedForwardModel{
		HiddenWeights: [][4]float32{
			{0, 0, 2.0, 0},
			{0, 0, 0, 1.5},
			{0.5, 40.0, 0, 0},
		},
		HiddenBias:    []float32{-0.6, -0.45, -0.4},
		OutputWeights: []float32{1.0, 1.0, -1.0},
		OutputBias:    0.05,
	}
}
