package entity

import (
	"math"

	"github.com/annel0/arrow-physics/internal/physics"
	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// EntityType представляет тип сущности
type EntityType uint16

const (
	EntityTypePlayer EntityType = iota
	EntityTypeMob
	EntityTypeMarker
)

func (t EntityType) String() string {
	switch t {
	case EntityTypePlayer:
		return "player"
	case EntityTypeMob:
		return "mob"
	case EntityTypeMarker:
		return "marker"
	default:
		return "unknown"
	}
}

// Стандартные размеры хитбоксов (ширина, высота, ширина)
var (
	PlayerSize = mgl64.Vec3{0.6, 1.8, 0.6}
	MobSize    = mgl64.Vec3{0.6, 1.95, 0.6}
	MarkerSize = mgl64.Vec3{0.5, 1.975, 0.5}
)

// Friction - доля горизонтальной скорости, сохраняемая за тик
const Friction = 0.6

// Entity представляет базовую сущность в мире.
// Position - точка у ног, хитбокс растёт вверх на Size.Y.
type Entity struct {
	EntityID projectile.ActorID     // Уникальный идентификатор сущности
	Type     EntityType             // Тип сущности
	Position mgl64.Vec3             // Текущая позиция в мире
	Velocity mgl64.Vec3             // Текущая скорость
	Size     mgl64.Vec3             // Размер хитбокса сущности
	Yaw      float64                // Направление взгляда по горизонтали
	Pitch    float64                // Наклон взгляда
	Payload  map[string]interface{} // Дополнительные данные сущности
	Active   bool                   // Активна ли сущность

	groundY float64
}

// NewEntity создаёт новую сущность
func NewEntity(id projectile.ActorID, entityType EntityType, position mgl64.Vec3, size mgl64.Vec3) *Entity {
	return &Entity{
		EntityID: id,
		Type:     entityType,
		Position: position,
		Size:     size,
		Payload:  make(map[string]interface{}),
		Active:   true,
		groundY:  position[1],
	}
}

// ID возвращает идентификатор сущности
func (e *Entity) ID() projectile.ActorID {
	return e.EntityID
}

// BoundingBox возвращает хитбокс в мировых координатах
func (e *Entity) BoundingBox() physics.AABB {
	hw := e.Size[0] / 2
	hd := e.Size[2] / 2
	return physics.AABB{
		Min: mgl64.Vec3{e.Position[0] - hw, e.Position[1], e.Position[2] - hd},
		Max: mgl64.Vec3{e.Position[0] + hw, e.Position[1] + e.Size[1], e.Position[2] + hd},
	}
}

// EyePosition возвращает точку глаз (85% высоты хитбокса)
func (e *Entity) EyePosition() mgl64.Vec3 {
	return e.Position.Add(mgl64.Vec3{0, e.Size[1] * 0.85, 0})
}

// BlockPos возвращает блок, в котором стоит сущность
func (e *Entity) BlockPos() vec.Vec3 {
	return vec.FromFloat(e.Position)
}

// Rotation возвращает направление взгляда (yaw, pitch) в градусах
func (e *Entity) Rotation() (yaw, pitch float64) {
	return e.Yaw, e.Pitch
}

// LookAt поворачивает взгляд сущности на точку
func (e *Entity) LookAt(target mgl64.Vec3) {
	e.Yaw, e.Pitch = vec.YawPitch(target.Sub(e.EyePosition()))
}

// Move применяет скорость к позиции и гасит её трением.
// Сущность не опускается ниже высоты, на которой появилась.
func (e *Entity) Move() bool {
	if e.Velocity.LenSqr() == 0 {
		return false
	}
	e.Position = e.Position.Add(e.Velocity)
	if e.Position[1] < e.groundY {
		e.Position[1] = e.groundY
		e.Velocity[1] = 0
	}
	e.Velocity = e.Velocity.Mul(Friction)
	if math.Abs(e.Velocity[0]) < 1e-3 && math.Abs(e.Velocity[1]) < 1e-3 && math.Abs(e.Velocity[2]) < 1e-3 {
		e.Velocity = mgl64.Vec3{}
	}
	return true
}

// Marker - неживой актёр (стойка, манекен): только хитбокс, эффекты попаданий не применяются
type Marker struct {
	*Entity
	Hits int
}

// NewMarker создаёт маркер в позиции pos
func NewMarker(id projectile.ActorID, pos mgl64.Vec3) *Marker {
	return &Marker{Entity: NewEntity(id, EntityTypeMarker, pos, MarkerSize)}
}

func (m *Marker) Capabilities() projectile.Capability     { return 0 }
func (m *Marker) PlayerControlled() bool                  { return false }
func (m *Marker) Attack(src projectile.DamageSource) bool { return false }
func (m *Marker) Tick()                                   { m.Move() }

func (m *Marker) Knockback(k projectile.Knockback) {}
func (m *Marker) ApplyPotion(p projectile.Potion)  {}
func (m *Marker) SetOnFireTicks(ticks int)         {}

// OnProjectileHit считает попадания в маркер
func (m *Marker) OnProjectileHit(_ *projectile.Projectile, _ mgl64.Vec3) {
	m.Hits++
}
