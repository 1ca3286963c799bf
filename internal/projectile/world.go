package projectile

import (
	"github.com/annel0/arrow-physics/internal/physics"
	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// ActorID - идентификатор актёра в мире. Нулевое значение означает отсутствие актёра.
type ActorID uint64

// Capability - набор возможностей актёра, которые учитывает движок попаданий
type Capability uint8

const (
	// CapDamage - актёр принимает урон
	CapDamage Capability = 1 << iota
	// CapKnockback - актёр может быть отброшен
	CapKnockback
	// CapStatusEffects - на актёра можно наложить эффекты зелья
	CapStatusEffects
	// CapIgnite - актёра можно поджечь
	CapIgnite
)

// CapLiving - полный набор возможностей живого существа
const CapLiving = CapDamage | CapKnockback | CapStatusEffects | CapIgnite

// Has проверяет наличие всех указанных возможностей
func (c Capability) Has(flags Capability) bool {
	return c&flags == flags
}

// Difficulty - уровень сложности мира
type Difficulty uint8

const (
	DifficultyPeaceful Difficulty = iota
	DifficultyEasy
	DifficultyNormal
	DifficultyHard
)

// Bonus возвращает числовую надбавку сложности для формулы урона
func (d Difficulty) Bonus() float64 {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyNormal:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 0
	}
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyPeaceful:
		return "peaceful"
	case DifficultyEasy:
		return "easy"
	case DifficultyNormal:
		return "normal"
	case DifficultyHard:
		return "hard"
	default:
		return "unknown"
	}
}

// ParseDifficulty разбирает сложность из строки конфигурации
func ParseDifficulty(s string) (Difficulty, bool) {
	switch s {
	case "peaceful":
		return DifficultyPeaceful, true
	case "easy":
		return DifficultyEasy, true
	case "", "normal":
		return DifficultyNormal, true
	case "hard":
		return DifficultyHard, true
	default:
		return DifficultyNormal, false
	}
}

// Sound - звук, воспроизводимый при попадании
type Sound uint8

const (
	SoundArrowHit Sound = iota
	SoundArrowHitBlock
)

func (s Sound) String() string {
	switch s {
	case SoundArrowHit:
		return "arrow_hit"
	case SoundArrowHitBlock:
		return "arrow_hit_block"
	default:
		return "unknown"
	}
}

// StatusEffect - эффект зелья, переносимый снарядом
type StatusEffect struct {
	Name      string `json:"name"`
	Amplifier int    `json:"amplifier"`
	Duration  int    `json:"duration_ticks"`
}

// Potion - полезная нагрузка наконечника стрелы
type Potion struct {
	Name    string         `json:"name"`
	Effects []StatusEffect `json:"effects"`
}

// DamageCause - причина урона
type DamageCause uint8

const (
	CauseProjectile DamageCause = iota
)

// DamageSource описывает урон, наносимый снарядом
type DamageSource struct {
	Cause      DamageCause
	Amount     float64
	Projectile ActorID
	Shooter    ActorID
	// ApplyKnockback всегда false: отбрасывание снаряда применяется отдельно
	ApplyKnockback bool
}

// Knockback - параметры отбрасывания цели
type Knockback struct {
	Source     mgl64.Vec3 `json:"source"`
	Strength   float64    `json:"strength"`
	Vertical   float64    `json:"vertical"`
	Additional mgl64.Vec3 `json:"additional"`
}

// Actor - актёр мира, с которым может столкнуться снаряд.
// Методы, не поддержанные набором Capabilities, движок не вызывает.
type Actor interface {
	ID() ActorID
	BoundingBox() physics.AABB
	Capabilities() Capability
	PlayerControlled() bool
	// Attack наносит урон; false означает, что урон отклонён (например, неуязвимость)
	Attack(src DamageSource) bool
	Knockback(k Knockback)
	ApplyPotion(p Potion)
	SetOnFireTicks(ticks int)
	// OnProjectileHit - собственная реакция цели на попадание
	OnProjectileHit(p *Projectile, hitPos mgl64.Vec3)
}

// BlockReactor - реакция блока на попадание снаряда
type BlockReactor interface {
	OnProjectileHit(pos vec.Vec3, p *Projectile, hitPos mgl64.Vec3)
}

// BlockShape - блок мира с формой коллизии в мировых координатах
type BlockShape struct {
	Pos   vec.Vec3
	Name  string
	Shape physics.Shape
	// Reactor может быть nil
	Reactor BlockReactor
}

// World - запросы к геометрии мира, нужные движку. Только чтение.
type World interface {
	QueryBlockShapes(region physics.AABB) []BlockShape
	QueryCollidingActors(region physics.AABB) []Actor
	CollidesWithBlocks(box physics.AABB) bool
	Actor(id ActorID) (Actor, bool)
	Difficulty() Difficulty
	CurrentTick() uint64
}

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -destination=mocks/effects_mock.go -package=mocks . Effects

// Effects - звуковые и визуальные эффекты, отправляемые без ожидания ответа
type Effects interface {
	PlaySound(pos mgl64.Vec3, sound Sound)
	ShakeArrow(id ActorID, ticks int)
}

// Random - источник случайных чисел для формулы урона.
// *math/rand.Rand удовлетворяет этому интерфейсу.
type Random interface {
	NormFloat64() float64
	Float64() float64
}
