package gpu

import (
	"testing"

	"github.com/gekko3d/gettingback/shadertypes/rev2"
	"github.com/stretchr/testify/assert"
)

func TestSweepReleasesUnused(t *testing.T) {
	cache := map[string]int{"cube": 1, "sphere": 2, "plane": 3}
	var released []int
	sweep(cache, map[string]bool{"sphere": true}, func(v int) { released = append(released, v) })

	assert.Equal(t, map[string]int{"sphere": 2}, cache)
	assert.ElementsMatch(t, []int{1, 3}, released)

	// an empty frame drops everything
	sweep(cache, nil, func(v int) { released = append(released, v) })
	assert.Empty(t, cache)
	assert.ElementsMatch(t, []int{1, 2, 3}, released)
}

func TestTexturesChanged(t *testing.T) {
	built := map[rev2.Textures]string{rev2.BaseColorTexture: "brick.png"}

	assert.False(t, texturesChanged(nil, nil))
	assert.False(t, texturesChanged(nil, map[rev2.Textures]string{}))
	assert.False(t, texturesChanged(built, map[rev2.Textures]string{rev2.BaseColorTexture: "brick.png"}))

	assert.True(t, texturesChanged(built, map[rev2.Textures]string{rev2.BaseColorTexture: "stone.png"}))
	assert.True(t, texturesChanged(built, map[rev2.Textures]string{
		rev2.BaseColorTexture: "brick.png",
		rev2.NormalTexture:    "brick_n.png",
	}))
	assert.True(t, texturesChanged(built, nil))
	assert.True(t, texturesChanged(nil, built))
}
