package policy

import (
	"testing"

	"github.com/piwi3910/BinPack3D/internal/env"
	"github.com/piwi3910/BinPack3D/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mask(rows ...string) [][]bool {
	m := make([][]bool, len(rows))
	for i, r := range rows {
		m[i] = make([]bool, len(r))
		for j, c := range r {
			m[i][j] = c == '#'
		}
	}
	return m
}

func obsWith(hm [][]int, m [][]bool, head model.Box) env.Observation {
	return env.Observation{HeightMap: hm, Mask: m, Upcoming: []model.Box{head}}
}

func TestFirstFit(t *testing.T) {
	obs := obsWith(nil, mask("...", ".#.", "###"), model.NewBox(1, 1, 1))
	a, ok := FirstFit{}.Choose(obs)
	require.True(t, ok)
	assert.Equal(t, 4, a.Position)
	assert.Equal(t, model.RotateNone, a.Rotation)

	_, ok = FirstFit{}.Choose(obsWith(nil, mask("...", "..."), model.NewBox(1, 1, 1)))
	assert.False(t, ok)
}

func TestLowestFit(t *testing.T) {
	hm := [][]int{
		{3, 3, 0},
		{3, 3, 0},
		{1, 1, 0},
	}
	obs := obsWith(hm, mask("##.", "##.", "#.."), model.NewBox(1, 2, 1))

	a, ok := LowestFit{}.Choose(obs)
	require.True(t, ok)
	// (2, 0) lands at 1, every other valid origin at 3.
	assert.Equal(t, 6, a.Position)
}

func TestLowestFit_TiesKeepRowMajorOrder(t *testing.T) {
	hm := [][]int{{0, 0}, {0, 0}}
	a, ok := LowestFit{}.Choose(obsWith(hm, mask(".#", "##"), model.NewBox(1, 1, 1)))
	require.True(t, ok)
	assert.Equal(t, 1, a.Position)

	_, ok = LowestFit{}.Choose(env.Observation{Mask: mask("#")})
	assert.False(t, ok, "no upcoming box")
}

func TestRandomFit_OnlyValidAndSeeded(t *testing.T) {
	obs := obsWith(nil, mask("#..#", "....", ".#.."), model.NewBox(1, 1, 1))
	valid := map[int]bool{0: true, 3: true, 9: true}

	a, b := NewRandomFit(3), NewRandomFit(3)
	for i := 0; i < 50; i++ {
		x, ok := a.Choose(obs)
		require.True(t, ok)
		assert.True(t, valid[x.Position], "position %d", x.Position)

		y, _ := b.Choose(obs)
		assert.Equal(t, x, y)
	}

	_, ok := a.Choose(obsWith(nil, mask(".."), model.NewBox(1, 1, 1)))
	assert.False(t, ok)
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		p, err := ByName(name, 1)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name())
	}

	p, err := ByName(" Lowest-Fit ", 0)
	require.NoError(t, err)
	assert.Equal(t, NameLowestFit, p.Name())

	_, err = ByName("best-fit", 0)
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestPoliciesDriveAGame(t *testing.T) {
	s := model.DefaultSettings()
	s.ContainerX, s.ContainerY, s.ContainerZ = 6, 6, 6
	for _, name := range Names() {
		g, err := env.New(s)
		require.NoError(t, err)
		obs, err := g.Reset()
		require.NoError(t, err)

		p, err := ByName(name, 2)
		require.NoError(t, err)
		for !g.Done() {
			a, ok := p.Choose(obs)
			if !ok {
				break
			}
			res, err := g.Step(a)
			require.NoError(t, err)
			require.False(t, res.Done, "%s picked a position outside the mask", name)
			obs = res.Observation
		}
		assert.Greater(t, g.Container().FillRatio(), 0.0, name)
		require.NoError(t, g.Container().Verify())
	}
}
