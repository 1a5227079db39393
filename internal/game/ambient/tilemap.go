package ambient

import (
	"math/rand"
)

// Terrain 地块类型
type Terrain byte

const (
	TerrainGrass Terrain = iota
	TerrainTree
	TerrainRock
	TerrainWater
)

// Passable 生物是否可站立
func (t Terrain) Passable() bool {
	return t == TerrainGrass || t == TerrainTree
}

const (
	defaultMapWidth  = 16
	defaultMapHeight = 12
)

// TileMap 区域地图，只用于放置生物
// 同一个种子总是生成同样的地图，因此不持久化
type TileMap struct {
	Width  int
	Height int
	Tiles  []Terrain
}

// GenerateTileMap 按种子生成地图
func GenerateTileMap(seed int64, width, height int) *TileMap {
	if width <= 0 {
		width = defaultMapWidth
	}
	if height <= 0 {
		height = defaultMapHeight
	}
	rng := rand.New(rand.NewSource(seed))
	m := &TileMap{Width: width, Height: height, Tiles: make([]Terrain, width*height)}
	for i := range m.Tiles {
		switch r := rng.Intn(100); {
		case r < 55:
			m.Tiles[i] = TerrainGrass
		case r < 80:
			m.Tiles[i] = TerrainTree
		case r < 92:
			m.Tiles[i] = TerrainRock
		default:
			m.Tiles[i] = TerrainWater
		}
	}
	return m
}

// At 获取地块
func (m *TileMap) At(x, y int) Terrain {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return TerrainRock
	}
	return m.Tiles[y*m.Width+x]
}

// RandomPassable 随机选择可站立的地块，地图全部不可站立时返回 (0,0)
func (m *TileMap) RandomPassable(rng *rand.Rand) (int, int) {
	var open []int
	for i, t := range m.Tiles {
		if t.Passable() {
			open = append(open, i)
		}
	}
	if len(open) == 0 {
		return 0, 0
	}
	i := open[rng.Intn(len(open))]
	return i % m.Width, i / m.Width
}
