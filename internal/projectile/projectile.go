package projectile

import (
	"fmt"

	"github.com/annel0/arrow-physics/internal/physics"
	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// ArrowHalfExtents - половинные размеры коробки стрелы
var ArrowHalfExtents = mgl64.Vec3{0.25, 0.25, 0.25}

// DefaultBaseDamage - базовый урон стрелы
const DefaultBaseDamage = 2.0

// Projectile - состояние летящего снаряда.
// Экспортируемые поля задаёт спавнер; флаги попадания меняет только Engine.
type Projectile struct {
	ID       ActorID
	Position mgl64.Vec3
	Motion   mgl64.Vec3
	Yaw      float64
	Pitch    float64
	Age      int
	// Shooter разрешается через мир при каждом использовании
	Shooter     ActorID
	HalfExtents mgl64.Vec3

	BaseDamage  float64
	PierceLevel int
	Critical    bool
	PowerLevel  int
	PunchLevel  int
	OnFire      bool
	Potion      *Potion
	// PickupDisabled - стрелу нельзя подобрать (боковые стрелы залпа)
	PickupDisabled bool

	hitBlock   bool
	lodgedTick uint64
	removed    bool
	ledger     Ledger
}

// NewArrow создаёт стрелу с параметрами по умолчанию
func NewArrow(id ActorID, pos, motion mgl64.Vec3) *Projectile {
	p := &Projectile{
		ID:          id,
		Position:    pos,
		Motion:      motion,
		HalfExtents: ArrowHalfExtents,
		BaseDamage:  DefaultBaseDamage,
	}
	p.Reorient()
	return p
}

// BoundingBox возвращает коробку снаряда в текущей позиции
func (p *Projectile) BoundingBox() physics.AABB {
	return physics.BoxAround(p.Position, p.HalfExtents)
}

// HitBlock сообщает, застрял ли снаряд в блоке
func (p *Projectile) HitBlock() bool {
	return p.hitBlock
}

// LodgedTick возвращает тик, на котором снаряд застрял в блоке
func (p *Projectile) LodgedTick() uint64 {
	return p.lodgedTick
}

// Removed сообщает, что снаряд будет удалён на следующем тике
func (p *Projectile) Removed() bool {
	return p.removed
}

// Remove помечает снаряд на удаление
func (p *Projectile) Remove() {
	p.removed = true
}

// Piercing сообщает, работает ли снаряд в режиме пробивания
func (p *Projectile) Piercing() bool {
	return EffectivePierceLevel(p.PierceLevel) > 0
}

// Ledger возвращает журнал пробитых актёров
func (p *Projectile) Ledger() *Ledger {
	return &p.ledger
}

// Reorient пересчитывает углы поворота по вектору движения
func (p *Projectile) Reorient() {
	if p.Motion.LenSqr() == 0 {
		return
	}
	p.Yaw, p.Pitch = vec.YawPitch(p.Motion)
}

func (p *Projectile) String() string {
	return fmt.Sprintf("Projectile{id=%d pos=%.3f,%.3f,%.3f motion=%.3f,%.3f,%.3f age=%d}",
		p.ID, p.Position[0], p.Position[1], p.Position[2], p.Motion[0], p.Motion[1], p.Motion[2], p.Age)
}
