package chunk

import "github.com/astei/anvilkit/data"

const maxLight = 15

// allocated reports whether y falls in storage that exists. Sectioned storage has holes that
// read as 0; lighting never allocates a section just to store light in it.
func allocated(a data.Array3, y int) bool {
	if c, ok := a.(*data.CompositeArray3); ok {
		return c.Allocated(y / c.SectionHeight())
	}
	return true
}

func attenuation(id int) int {
	if op := Info(id).Opacity; op > 1 {
		return op
	}
	return 1
}

func (b *BlockCollection) columnHeight(x, z int) int {
	for y := b.YDim() - 1; y >= 0; y-- {
		if Info(b.ids.Get(x, y, z)).Opacity > 0 {
			return y + 1
		}
	}
	return 0
}

// RebuildHeightMap recomputes every column of the height map from the block ids.
func (b *BlockCollection) RebuildHeightMap() {
	if b.height == nil {
		return
	}
	for x := 0; x < b.XDim(); x++ {
		for z := 0; z < b.ZDim(); z++ {
			b.height.Set(x, z, b.columnHeight(x, z))
		}
	}
}

func (b *BlockCollection) heightAt(x, z int) int {
	if b.height == nil {
		return b.columnHeight(x, z)
	}
	return b.height.Get(x, z)
}

// skyColumn lights one column from the top: full light down to the height map, then
// attenuated by every block below it. Light does not spread sideways.
func (b *BlockCollection) skyColumn(x, z int) {
	h := b.heightAt(x, z)
	light := maxLight
	for y := b.YDim() - 1; y >= 0; y-- {
		if y < h {
			light -= attenuation(b.ids.Get(x, y, z))
			if light < 0 {
				light = 0
			}
		}
		if allocated(b.skyLight, y) {
			b.skyLight.Set(x, y, z, light)
		}
	}
}

// RebuildSkyLight recomputes the sky light of every column.
func (b *BlockCollection) RebuildSkyLight() {
	if b.skyLight == nil {
		return
	}
	for x := 0; x < b.XDim(); x++ {
		for z := 0; z < b.ZDim(); z++ {
			b.skyColumn(x, z)
		}
	}
}

type lightNode struct {
	x, y, z int
}

// spreadBlockLight floods block light outward from queue, lowering it by each receiving
// block's attenuation, without leaving the collection.
func (b *BlockCollection) spreadBlockLight(queue []lightNode) {
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		level := b.blockLight.Get(n.x, n.y, n.z)
		if level <= 1 {
			continue
		}
		for _, d := range neighbours {
			x, y, z := n.x+d[0], n.y+d[1], n.z+d[2]
			if !b.InBounds(x, y, z) || !allocated(b.blockLight, y) {
				continue
			}
			next := level - attenuation(b.ids.Get(x, y, z))
			if next > b.blockLight.Get(x, y, z) {
				b.blockLight.Set(x, y, z, next)
				queue = append(queue, lightNode{x, y, z})
			}
		}
	}
}

// RebuildBlockLight clears block light and floods it again from every emitting block.
func (b *BlockCollection) RebuildBlockLight() {
	if b.blockLight == nil {
		return
	}
	b.blockLight.Clear()
	var queue []lightNode
	for y := 0; y < b.YDim(); y++ {
		if !allocated(b.ids, y) {
			continue
		}
		for z := 0; z < b.ZDim(); z++ {
			for x := 0; x < b.XDim(); x++ {
				if lum := Info(b.ids.Get(x, y, z)).Luminance; lum > 0 {
					b.blockLight.Set(x, y, z, lum)
					queue = append(queue, lightNode{x, y, z})
				}
			}
		}
	}
	b.spreadBlockLight(queue)
}

// Relight rebuilds the height map, sky light and block light.
func (b *BlockCollection) Relight() {
	b.RebuildHeightMap()
	b.RebuildSkyLight()
	b.RebuildBlockLight()
}

func (b *BlockCollection) updateLight(x, y, z int, old, info BlockInfo) {
	if b.height != nil && old.Opacity != info.Opacity {
		h := b.height.Get(x, z)
		switch {
		case info.Opacity > 0 && y >= h:
			b.height.Set(x, z, y+1)
		case info.Opacity == 0 && y+1 == h:
			b.height.Set(x, z, b.columnHeight(x, z))
		}
	}
	if b.skyLight != nil {
		b.skyColumn(x, z)
	}
	if b.blockLight == nil {
		return
	}

	switch {
	case old.Luminance > 0, info.Opacity > old.Opacity && b.blockLight.Get(x, y, z) > 0:
		// Light that came through or from this block has to be taken back.
		b.RebuildBlockLight()
	case info.Luminance > 0, info.Opacity < old.Opacity:
		if info.Luminance > b.blockLight.Get(x, y, z) {
			b.blockLight.Set(x, y, z, info.Luminance)
		}
		queue := []lightNode{{x, y, z}}
		for _, d := range neighbours {
			if nx, ny, nz := x+d[0], y+d[1], z+d[2]; b.InBounds(nx, ny, nz) && allocated(b.blockLight, ny) {
				queue = append(queue, lightNode{nx, ny, nz})
			}
		}
		b.spreadBlockLight(queue)
	}
}
