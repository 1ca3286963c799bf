package world

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/annel0/arrow-physics/internal/logging"
	"github.com/annel0/arrow-physics/internal/physics"
	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/annel0/arrow-physics/internal/world/block"
	"github.com/go-gl/mathgl/mgl64"
)

// EffectLogSize - сколько последних эффектов хранит измерение
const EffectLogSize = 256

// firstActorID - ID выдаются с 1000, чтобы не пересекаться с ручными ID в тестах
const firstActorID = 1000

// EffectKind - вид эффекта, отправленного миром
type EffectKind string

const (
	EffectSound EffectKind = "sound"
	EffectShake EffectKind = "shake"
)

// EffectRecord - запись о звуке или тряске стрелы
type EffectRecord struct {
	Tick         uint64             `json:"tick"`
	Kind         EffectKind         `json:"kind"`
	Sound        string             `json:"sound,omitempty"`
	Pos          mgl64.Vec3         `json:"pos"`
	ProjectileID projectile.ActorID `json:"projectile_id,omitempty"`
	Ticks        int                `json:"ticks,omitempty"`
}

// EffectDispatcher получает эффекты для отправки наружу (клиентам, в шину)
type EffectDispatcher interface {
	DispatchEffect(rec EffectRecord)
}

// Ticker - актёр с собственной логикой тика
type Ticker interface {
	Tick()
}

// DimensionStats - сводка состояния измерения
type DimensionStats struct {
	Tick       uint64     `json:"tick"`
	Chunks     int        `json:"chunks"`
	Actors     int        `json:"actors"`
	Difficulty string     `json:"difficulty"`
	Effects    int        `json:"effects"`
	Index      IndexStats `json:"index"`
}

// Dimension - измерение игрового мира: блоки, актёры и эффекты.
// Реализует projectile.World, projectile.Effects и block.BlockAPI.
type Dimension struct {
	chunks    map[vec.Vec3]*Chunk // Загруженные чанки
	generator Generator           // Генератор новых чанков (может быть nil)

	actors map[projectile.ActorID]projectile.Actor
	index  *SpatialIndex

	difficulty projectile.Difficulty
	tick       uint64

	effects    []EffectRecord
	dispatcher EffectDispatcher

	nextID atomic.Uint64
	mu     sync.RWMutex
}

// NewDimension создаёт пустое измерение. generator может быть nil.
func NewDimension(generator Generator) *Dimension {
	d := &Dimension{
		chunks:     make(map[vec.Vec3]*Chunk),
		generator:  generator,
		actors:     make(map[projectile.ActorID]projectile.Actor),
		index:      NewSpatialIndex(DefaultCellSize),
		difficulty: projectile.DifficultyNormal,
		effects:    make([]EffectRecord, 0, EffectLogSize),
	}
	d.nextID.Store(firstActorID)
	return d
}

// NextActorID выдаёт уникальный ID для актёра или снаряда
func (d *Dimension) NextActorID() projectile.ActorID {
	return projectile.ActorID(d.nextID.Add(1))
}

// SetEffectDispatcher устанавливает получателя эффектов
func (d *Dimension) SetEffectDispatcher(dispatcher EffectDispatcher) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dispatcher = dispatcher
}

// ===== Чанки и блоки =====

// LoadChunk возвращает чанк, генерируя его при необходимости
func (d *Dimension) LoadChunk(coords vec.Vec3) *Chunk {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadChunkLocked(coords)
}

func (d *Dimension) loadChunkLocked(coords vec.Vec3) *Chunk {
	if chunk, exists := d.chunks[coords]; exists {
		return chunk
	}

	var chunk *Chunk
	if d.generator != nil {
		chunk = d.generator.GenerateChunk(coords)
		logging.Trace("Сгенерирован чанк %s", coords)
	} else {
		chunk = NewChunk(coords)
	}
	d.chunks[coords] = chunk
	return chunk
}

// LoadArea загружает все чанки, покрывающие блоки от min до max включительно
func (d *Dimension) LoadArea(min, max vec.Vec3) int {
	from := min.ToChunkCoords()
	to := max.ToChunkCoords()

	d.mu.Lock()
	defer d.mu.Unlock()

	loaded := 0
	for x := from.X; x <= to.X; x++ {
		for y := from.Y; y <= to.Y; y++ {
			for z := from.Z; z <= to.Z; z++ {
				d.loadChunkLocked(vec.Vec3{X: x, Y: y, Z: z})
				loaded++
			}
		}
	}
	return loaded
}

// chunkAt возвращает загруженный чанк или nil
func (d *Dimension) chunkAt(pos vec.Vec3) *Chunk {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.chunks[pos.ToChunkCoords()]
}

// GetBlockID возвращает блок в позиции; в незагруженных чанках - воздух
func (d *Dimension) GetBlockID(pos vec.Vec3) block.BlockID {
	chunk := d.chunkAt(pos)
	if chunk == nil {
		return block.AirBlockID
	}
	return chunk.GetBlock(pos.LocalInChunk())
}

// SetBlock устанавливает блок, загружая чанк при необходимости
func (d *Dimension) SetBlock(pos vec.Vec3, id block.BlockID) {
	d.LoadChunk(pos.ToChunkCoords()).SetBlock(pos.LocalInChunk(), id)
}

// GetBlockMetadata возвращает значение метаданных блока по ключу
func (d *Dimension) GetBlockMetadata(pos vec.Vec3, key string) interface{} {
	chunk := d.chunkAt(pos)
	if chunk == nil {
		return nil
	}
	value, _ := chunk.GetBlockMetadataValue(pos.LocalInChunk(), key)
	return value
}

// SetBlockMetadata устанавливает значение метаданных блока по ключу
func (d *Dimension) SetBlockMetadata(pos vec.Vec3, key string, value interface{}) {
	d.LoadChunk(pos.ToChunkCoords()).SetBlockMetadata(pos.LocalInChunk(), key, value)
}

// MediumAt возвращает среду в точке (воздух или жидкость)
func (d *Dimension) MediumAt(pos mgl64.Vec3) physics.Medium {
	behavior, exists := block.Get(d.GetBlockID(vec.FromFloat(pos)))
	if !exists {
		return physics.MediumAir
	}
	return behavior.Medium()
}

// QueryBlockShapes возвращает блоки, чьи формы касаются области.
// Область расширяется на блок вниз: забор выше одного блока.
func (d *Dimension) QueryBlockShapes(region physics.AABB) []projectile.BlockShape {
	minX, minY, minZ := floor(region.Min[0]), floor(region.Min[1])-1, floor(region.Min[2])
	maxX, maxY, maxZ := floor(region.Max[0]), floor(region.Max[1]), floor(region.Max[2])

	result := make([]projectile.BlockShape, 0)
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				pos := vec.Vec3{X: x, Y: y, Z: z}
				id := d.GetBlockID(pos)
				if id == block.AirBlockID {
					continue
				}
				behavior, exists := block.Get(id)
				if !exists || behavior.Shape().Empty() {
					continue
				}

				shape := behavior.Shape().At(pos)
				if !shape.Bounds().Overlaps(region) {
					continue
				}
				result = append(result, projectile.BlockShape{
					Pos:     pos,
					Name:    behavior.Name(),
					Shape:   shape,
					Reactor: blockReactor{api: d, behavior: behavior},
				})
			}
		}
	}
	return result
}

// CollidesWithBlocks проверяет строгое пересечение коробки с формами блоков
func (d *Dimension) CollidesWithBlocks(box physics.AABB) bool {
	for _, b := range d.QueryBlockShapes(box) {
		if b.Shape.Intersects(box) {
			return true
		}
	}
	return false
}

func floor(v float64) int {
	return int(math.Floor(v))
}

// blockReactor передаёт попадание снаряда поведению блока
type blockReactor struct {
	api      block.BlockAPI
	behavior block.BlockBehavior
}

func (r blockReactor) OnProjectileHit(pos vec.Vec3, p *projectile.Projectile, hitPos mgl64.Vec3) {
	r.behavior.OnProjectileHit(r.api, pos, block.ProjectileHit{
		ProjectileID: uint64(p.ID),
		ShooterID:    uint64(p.Shooter),
		HitPos:       hitPos,
		Motion:       p.Motion,
	})
}

// ===== Актёры =====

// AddActor регистрирует актёра и добавляет его в пространственный индекс
func (d *Dimension) AddActor(a projectile.Actor) {
	d.mu.Lock()
	d.actors[a.ID()] = a
	d.mu.Unlock()

	d.index.Insert(a.ID(), a.BoundingBox())
}

// RemoveActor удаляет актёра из мира
func (d *Dimension) RemoveActor(id projectile.ActorID) {
	d.mu.Lock()
	delete(d.actors, id)
	d.mu.Unlock()

	d.index.Remove(id)
}

// Actor возвращает актёра по ID
func (d *Dimension) Actor(id projectile.ActorID) (projectile.Actor, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.actors[id]
	return a, ok
}

// Actors возвращает всех актёров, отсортированных по ID
func (d *Dimension) Actors() []projectile.Actor {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]projectile.Actor, 0, len(d.actors))
	for _, a := range d.actors {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Reindex обновляет хитбокс актёра в индексе после перемещения
func (d *Dimension) Reindex(id projectile.ActorID) {
	if a, ok := d.Actor(id); ok {
		d.index.Update(id, a.BoundingBox())
	}
}

// QueryCollidingActors возвращает актёров, чьи хитбоксы касаются области, по возрастанию ID
func (d *Dimension) QueryCollidingActors(region physics.AABB) []projectile.Actor {
	ids := d.index.Query(region)

	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]projectile.Actor, 0, len(ids))
	for _, id := range ids {
		a, ok := d.actors[id]
		if !ok {
			continue
		}
		if a.BoundingBox().Overlaps(region) {
			result = append(result, a)
		}
	}
	return result
}

// TickActors продвигает актёров на тик, обновляет индекс и убирает погибших.
// Возвращает количество удалённых актёров.
func (d *Dimension) TickActors() int {
	removed := 0
	for _, a := range d.Actors() {
		if t, ok := a.(Ticker); ok {
			t.Tick()
		}
		if dead, ok := a.(interface{ Dead() bool }); ok && dead.Dead() {
			d.RemoveActor(a.ID())
			removed++
			logging.Debug("Актёр %d погиб и удалён из мира", a.ID())
			continue
		}
		d.index.Update(a.ID(), a.BoundingBox())
	}
	return removed
}

// ===== Состояние мира =====

// Difficulty возвращает сложность мира
func (d *Dimension) Difficulty() projectile.Difficulty {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.difficulty
}

// SetDifficulty устанавливает сложность мира
func (d *Dimension) SetDifficulty(diff projectile.Difficulty) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.difficulty = diff
}

// CurrentTick возвращает номер текущего тика
func (d *Dimension) CurrentTick() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tick
}

// AdvanceTick увеличивает счётчик тиков и возвращает новое значение
func (d *Dimension) AdvanceTick() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tick++
	return d.tick
}

// ===== Эффекты =====

// PlaySound записывает звук и передаёт его диспетчеру
func (d *Dimension) PlaySound(pos mgl64.Vec3, sound projectile.Sound) {
	d.emit(EffectRecord{Kind: EffectSound, Sound: sound.String(), Pos: pos})
}

// ShakeArrow записывает тряску застрявшей стрелы
func (d *Dimension) ShakeArrow(id projectile.ActorID, ticks int) {
	d.emit(EffectRecord{Kind: EffectShake, ProjectileID: id, Ticks: ticks})
}

func (d *Dimension) emit(rec EffectRecord) {
	d.mu.Lock()
	rec.Tick = d.tick
	if len(d.effects) == EffectLogSize {
		copy(d.effects, d.effects[1:])
		d.effects = d.effects[:EffectLogSize-1]
	}
	d.effects = append(d.effects, rec)
	dispatcher := d.dispatcher
	d.mu.Unlock()

	if dispatcher != nil {
		dispatcher.DispatchEffect(rec)
	}
}

// RecentEffects возвращает копию журнала последних эффектов
func (d *Dimension) RecentEffects() []EffectRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]EffectRecord, len(d.effects))
	copy(out, d.effects)
	return out
}

// Stats возвращает сводку состояния измерения
func (d *Dimension) Stats() DimensionStats {
	d.mu.RLock()
	stats := DimensionStats{
		Tick:       d.tick,
		Chunks:     len(d.chunks),
		Actors:     len(d.actors),
		Difficulty: d.difficulty.String(),
		Effects:    len(d.effects),
	}
	d.mu.RUnlock()

	stats.Index = d.index.Stats()
	return stats
}

var (
	_ projectile.World   = (*Dimension)(nil)
	_ projectile.Effects = (*Dimension)(nil)
	_ block.BlockAPI     = (*Dimension)(nil)
)
