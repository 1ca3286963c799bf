package implementations

import "github.com/annel0/arrow-physics/internal/world/block"

// Регистрируем все типы блоков при импорте пакета
func init() {
	// Базовые блоки
	block.Register(block.AirBlockID, &AirBehavior{})
	block.Register(block.StoneBlockID, NewStoneBehavior())
	block.Register(block.GrassBlockID, NewGrassBehavior())
	block.Register(block.WaterBlockID, &WaterBehavior{})
	block.Register(block.DirtBlockID, NewDirtBehavior())

	// Неполные блоки
	block.Register(block.SlabBlockID, &SlabBehavior{})
	block.Register(block.FenceBlockID, &FenceBehavior{})

	// Блоки с реакцией на снаряды
	block.Register(block.TargetBlockID, &TargetBehavior{})
	block.Register(block.GlassBlockID, &GlassBehavior{})
}
