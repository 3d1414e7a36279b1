package chunk

import "sync"

// Block ids the automatic behaviours care about.
const (
	BlockAir            = 0
	BlockStone          = 1
	BlockGrass          = 2
	BlockDirt           = 3
	BlockCobblestone    = 4
	BlockPlanks         = 5
	BlockSapling        = 6
	BlockBedrock        = 7
	BlockFlowingWater   = 8
	BlockWater          = 9
	BlockFlowingLava    = 10
	BlockLava           = 11
	BlockSand           = 12
	BlockGravel         = 13
	BlockLeaves         = 18
	BlockGlass          = 20
	BlockDispenser      = 23
	BlockNoteBlock      = 25
	BlockTallGrass      = 31
	BlockDandelion      = 37
	BlockRose           = 38
	BlockBrownMushroom  = 39
	BlockRedMushroom    = 40
	BlockTorch          = 50
	BlockFire           = 51
	BlockMobSpawner     = 52
	BlockChest          = 54
	BlockRedstoneWire   = 55
	BlockFurnace        = 61
	BlockBurningFurnace = 62
	BlockSignPost       = 63
	BlockWoodenDoor     = 64
	BlockLadder         = 65
	BlockWallSign       = 68
	BlockSnowLayer      = 78
	BlockIce            = 79
	BlockCactus         = 81
	BlockSugarCane      = 83
	BlockJukebox        = 84
	BlockFence          = 85
	BlockGlowstone      = 89
	BlockPortal         = 90
	BlockJackOLantern   = 91
	BlockIronBars       = 101
	BlockGlassPane      = 102
	BlockEnchantTable   = 116
	BlockBrewingStand   = 117
	BlockEndPortal      = 119
)

// BlockInfo describes how a block id interacts with light, tile entities and scheduled ticks.
type BlockInfo struct {
	ID   int
	Name string
	// Opacity is how much light the block absorbs, 0 (transparent) to 15 (opaque).
	Opacity int
	// Luminance is the block light level the block emits.
	Luminance int
	// TileEntity is the tile entity id a block of this kind owns, or "".
	TileEntity string
	// TickDelay is the delay of the tile tick scheduled when the block is placed, or 0.
	TickDelay int
	Fluid     bool
}

// Transparent reports whether light passes through the block unchanged.
func (b BlockInfo) Transparent() bool { return b.Opacity == 0 }

var (
	blockInfoMu sync.RWMutex
	blockInfo   = map[int]BlockInfo{}
)

// RegisterBlock adds or replaces the info of one block id.
func RegisterBlock(info BlockInfo) {
	blockInfoMu.Lock()
	defer blockInfoMu.Unlock()
	blockInfo[info.ID] = info
}

// Info returns the registered info for id. Unknown ids are opaque, emit no light and own no tile
// entity.
func Info(id int) BlockInfo {
	blockInfoMu.RLock()
	info, ok := blockInfo[id]
	blockInfoMu.RUnlock()
	if !ok {
		return BlockInfo{ID: id, Name: "unknown", Opacity: 15}
	}
	return info
}

func init() {
	for _, info := range []BlockInfo{
		{ID: BlockAir, Name: "air"},
		{ID: BlockStone, Name: "stone", Opacity: 15},
		{ID: BlockGrass, Name: "grass", Opacity: 15},
		{ID: BlockDirt, Name: "dirt", Opacity: 15},
		{ID: BlockCobblestone, Name: "cobblestone", Opacity: 15},
		{ID: BlockPlanks, Name: "planks", Opacity: 15},
		{ID: BlockSapling, Name: "sapling"},
		{ID: BlockBedrock, Name: "bedrock", Opacity: 15},
		{ID: BlockFlowingWater, Name: "flowing water", Opacity: 3, TickDelay: 5, Fluid: true},
		{ID: BlockWater, Name: "water", Opacity: 3, Fluid: true},
		{ID: BlockFlowingLava, Name: "flowing lava", Opacity: 15, Luminance: 15, TickDelay: 30, Fluid: true},
		{ID: BlockLava, Name: "lava", Opacity: 15, Luminance: 15, Fluid: true},
		{ID: BlockSand, Name: "sand", Opacity: 15},
		{ID: BlockGravel, Name: "gravel", Opacity: 15},
		{ID: BlockLeaves, Name: "leaves", Opacity: 1},
		{ID: BlockGlass, Name: "glass"},
		{ID: BlockDispenser, Name: "dispenser", Opacity: 15, TileEntity: "Trap"},
		{ID: BlockNoteBlock, Name: "note block", Opacity: 15, TileEntity: "Music"},
		{ID: BlockTallGrass, Name: "tall grass"},
		{ID: BlockDandelion, Name: "dandelion"},
		{ID: BlockRose, Name: "rose"},
		{ID: BlockBrownMushroom, Name: "brown mushroom", Luminance: 1},
		{ID: BlockRedMushroom, Name: "red mushroom"},
		{ID: BlockTorch, Name: "torch", Luminance: 14},
		{ID: BlockFire, Name: "fire", Luminance: 15, TickDelay: 40},
		{ID: BlockMobSpawner, Name: "monster spawner", TileEntity: "MobSpawner"},
		{ID: BlockChest, Name: "chest", TileEntity: "Chest"},
		{ID: BlockRedstoneWire, Name: "redstone wire"},
		{ID: BlockFurnace, Name: "furnace", Opacity: 15, TileEntity: "Furnace"},
		{ID: BlockBurningFurnace, Name: "burning furnace", Opacity: 15, Luminance: 13, TileEntity: "Furnace"},
		{ID: BlockSignPost, Name: "sign post", TileEntity: "Sign"},
		{ID: BlockWoodenDoor, Name: "wooden door"},
		{ID: BlockLadder, Name: "ladder"},
		{ID: BlockWallSign, Name: "wall sign", TileEntity: "Sign"},
		{ID: BlockSnowLayer, Name: "snow"},
		{ID: BlockIce, Name: "ice", Opacity: 3},
		{ID: BlockCactus, Name: "cactus", TickDelay: 10},
		{ID: BlockSugarCane, Name: "sugar cane", TickDelay: 10},
		{ID: BlockJukebox, Name: "jukebox", Opacity: 15, TileEntity: "RecordPlayer"},
		{ID: BlockFence, Name: "fence"},
		{ID: BlockGlowstone, Name: "glowstone", Opacity: 15, Luminance: 15},
		{ID: BlockPortal, Name: "portal", Luminance: 11},
		{ID: BlockJackOLantern, Name: "jack-o-lantern", Opacity: 15, Luminance: 15},
		{ID: BlockIronBars, Name: "iron bars"},
		{ID: BlockGlassPane, Name: "glass pane"},
		{ID: BlockEnchantTable, Name: "enchantment table", TileEntity: "EnchantTable"},
		{ID: BlockBrewingStand, Name: "brewing stand", Luminance: 1, TileEntity: "Cauldron"},
		{ID: BlockEndPortal, Name: "end portal", Luminance: 15, TileEntity: "Airportal"},
	} {
		blockInfo[info.ID] = info
	}
}
