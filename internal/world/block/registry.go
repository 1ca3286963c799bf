package block

import "fmt"

var registry = make(map[BlockID]BlockBehavior)

// Register добавляет поведение блока в регистр
func Register(id BlockID, behavior BlockBehavior) {
	registry[id] = behavior
}

// Get возвращает поведение для указанного ID
func Get(id BlockID) (BlockBehavior, bool) {
	behavior, exists := registry[id]
	return behavior, exists
}

// MustGet возвращает поведение или паникует для незарегистрированного ID
func MustGet(id BlockID) BlockBehavior {
	behavior, exists := registry[id]
	if !exists {
		panic(fmt.Sprintf("блок %d не зарегистрирован", id))
	}
	return behavior
}

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока
func IsValidBlockID(id BlockID) bool {
	_, exists := registry[id]
	return exists
}

// BlockID представляет идентификатор блока
type BlockID uint16

// Константы ID блоков
const (
	// Базовые типы блоков
	AirBlockID   BlockID = iota // 0
	StoneBlockID                // 1
	GrassBlockID                // 2
	WaterBlockID                // 3
	DirtBlockID                 // 4

	// Блоки с неполной формой (начиная с 100)
	SlabBlockID  BlockID = 100 // Полублок
	FenceBlockID BlockID = 101 // Забор, столб высотой 1.5

	// Блоки с реакцией на снаряды (начиная с 200)
	TargetBlockID BlockID = 200 // Мишень, считает попадания
	GlassBlockID  BlockID = 201 // Стекло, трескается от попаданий
)
