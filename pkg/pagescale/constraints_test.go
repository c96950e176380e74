package pagescale

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"framecore/pkg/geom"
)

func TestOverrideWith(t *testing.T) {
	tests := []struct {
		name       string
		base, over Constraints
		want       Constraints
	}{
		{"unset leaves base", MakeConstraints(1, 0.5, 4), NewConstraints(), MakeConstraints(1, 0.5, 4)},
		{"initial only", MakeConstraints(1, 0.5, 4), MakeConstraints(2, Unset, Unset), MakeConstraints(2, 0.5, 4)},
		{"min above max raises max", MakeConstraints(1, 0.5, 4), MakeConstraints(Unset, 6, Unset), MakeConstraints(1, 6, 6)},
		{"max below min lowers min", MakeConstraints(1, 2, 4), MakeConstraints(Unset, Unset, 1), MakeConstraints(1, 1, 1)},
		{
			"layout size",
			Constraints{InitialScale: 1, MinimumScale: 1, MaximumScale: 1, LayoutSize: geom.Size{Width: 10, Height: 10}},
			Constraints{InitialScale: Unset, MinimumScale: Unset, MaximumScale: Unset, LayoutSize: geom.Size{Width: 980, Height: 1200}},
			Constraints{InitialScale: 1, MinimumScale: 1, MaximumScale: 1, LayoutSize: geom.Size{Width: 980, Height: 1200}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.base
			got.OverrideWith(tt.over)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("OverrideWith mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClampToConstraints(t *testing.T) {
	c := MakeConstraints(Unset, 0.5, 2)
	assert.Equal(t, 0.5, c.ClampToConstraints(0.1))
	assert.Equal(t, 2.0, c.ClampToConstraints(3))
	assert.Equal(t, 1.5, c.ClampToConstraints(1.5))
	assert.Equal(t, float64(Unset), c.ClampToConstraints(Unset))
	assert.Equal(t, 10.0, NewConstraints().ClampToConstraints(10))
}

func TestFitToContentsWidth(t *testing.T) {
	c := MakeConstraints(Unset, 0.25, 5)
	c.FitToContentsWidth(0, 400)
	assert.Equal(t, 0.25, c.MinimumScale)

	c.FitToContentsWidth(800, 400)
	assert.Equal(t, 0.5, c.MinimumScale)
	assert.Equal(t, 0.5, c.InitialScale)
}

func TestResolveAutoInitialScale(t *testing.T) {
	c := MakeConstraints(Unset, 0.75, 3)
	c.ResolveAutoInitialScale()
	assert.Equal(t, 0.75, c.InitialScale)

	c = MakeConstraints(10, 0.75, 3)
	c.ResolveAutoInitialScale()
	assert.Equal(t, 3.0, c.InitialScale)
}
