package projectile

import (
	"fmt"
	"math"
	"sort"

	"github.com/annel0/arrow-physics/internal/logging"
	"github.com/annel0/arrow-physics/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// blockHit - результат свёртки по блокам: ближайший блок на пути
type blockHit struct {
	block *BlockShape
	t     float64
}

// actorHit - кандидат-актёр на пути снаряда
type actorHit struct {
	actor Actor
	t     float64
}

// UpdateMotion пересчитывает скорость снаряда на следующий тик.
// Застрявший снаряд, коробка которого касается блоков, остаётся неподвижным.
func (e *Engine) UpdateMotion(p *Projectile, medium physics.Medium) mgl64.Vec3 {
	if p.hitBlock && e.world.CollidesWithBlocks(p.BoundingBox()) {
		p.Motion = mgl64.Vec3{}
		return p.Motion
	}
	p.Motion = physics.Integrate(p.Motion, e.cfg.Gravity, e.cfg.Drag.Factor(medium))
	return p.Motion
}

// Advance перемещает снаряд вдоль вектора движения за один тик и разрешает попадания.
// Возвращает true, если позиция изменилась.
// При некорректной геометрии возвращается ErrMalformedGeometry, снаряд не изменяется.
func (e *Engine) Advance(p *Projectile) (bool, error) {
	if p.removed || p.Motion.LenSqr() == 0 {
		return false, nil
	}

	ray := physics.Ray{Origin: p.Position, Dir: p.Motion}
	region := ray.Bounds()

	block, err := e.nearestBlock(ray, region)
	if err != nil {
		return false, err
	}
	actors, err := e.candidates(p, ray, region, block.t)
	if err != nil {
		return false, err
	}

	if p.Piercing() {
		return e.advancePiercing(p, ray, block, actors), nil
	}
	return e.advanceSingle(p, ray, block, actors), nil
}

// nearestBlock находит ближайшее пересечение пути с формами блоков.
// Если пересечений нет, t равен +Inf.
func (e *Engine) nearestBlock(ray physics.Ray, region physics.AABB) (blockHit, error) {
	nearest := blockHit{t: math.Inf(1)}

	shapes := e.world.QueryBlockShapes(region)
	for i := range shapes {
		if err := shapes[i].Shape.Validate(); err != nil {
			return blockHit{}, fmt.Errorf("block %s at %s: %w: %v", shapes[i].Name, shapes[i].Pos, ErrMalformedGeometry, err)
		}
		if t, ok := shapes[i].Shape.IntersectRay(ray); ok && t < nearest.t {
			nearest = blockHit{block: &shapes[i], t: t}
		}
	}
	return nearest, nil
}

// candidates собирает актёров, которых путь пересекает раньше ближайшего блока,
// отсортированных по расстоянию (устойчиво для равных t).
func (e *Engine) candidates(p *Projectile, ray physics.Ray, region physics.AABB, blockT float64) ([]actorHit, error) {
	var hits []actorHit

	for _, a := range e.world.QueryCollidingActors(region) {
		id := a.ID()
		if id == p.ID {
			continue
		}
		if p.Shooter != 0 && id == p.Shooter && p.Age <= e.cfg.ShooterGraceTicks {
			continue
		}
		if p.ledger.Contains(id) {
			continue
		}

		box := a.BoundingBox()
		if err := box.Validate(); err != nil {
			return nil, fmt.Errorf("actor %d: %w: %v", id, ErrMalformedGeometry, err)
		}
		if t, ok := box.IntersectRay(ray); ok && t < blockT {
			hits = append(hits, actorHit{actor: a, t: t})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].t < hits[j].t
	})
	return hits, nil
}

// advanceSingle - обычный режим: учитывается только ближайшее попадание
func (e *Engine) advanceSingle(p *Projectile, ray physics.Ray, block blockHit, actors []actorHit) bool {
	origin := p.Position

	if len(actors) > 0 {
		hit := actors[0]
		hitPos := ray.At(hit.t)
		moved := e.commit(p, origin, hitPos)

		ev := &HitEvent{Projectile: p, HitPos: hitPos, Actor: hit.actor}
		if e.fireHitEvent(ev) {
			hit.actor.OnProjectileHit(p, hitPos)
			e.OnHitActor(p, hit.actor, hitPos)
		}
		return moved
	}

	dest := ray.At(1)
	if block.block != nil {
		dest = ray.At(block.t)
	}
	if !e.commit(p, origin, dest) {
		return false
	}
	if block.block != nil {
		e.resolveBlock(p, block.block, dest)
	}
	return true
}

// advancePiercing - режим пробивания: снаряд проходит сквозь актёров
// и останавливается только на ближайшем блоке
func (e *Engine) advancePiercing(p *Projectile, ray physics.Ray, block blockHit, actors []actorHit) bool {
	origin := p.Position

	for _, hit := range actors {
		if p.ledger.Remaining(p.PierceLevel) <= 0 {
			break
		}
		hitPos := ray.At(hit.t)
		ev := &HitEvent{Projectile: p, HitPos: hitPos, Actor: hit.actor}
		if e.fireHitEvent(ev) {
			hit.actor.OnProjectileHit(p, hitPos)
			e.OnHitActor(p, hit.actor, hitPos)
		}
	}

	dest := ray.At(1)
	if block.block != nil {
		dest = ray.At(block.t)
	}
	if !e.commit(p, origin, dest) {
		return false
	}
	if block.block != nil {
		e.resolveBlock(p, block.block, dest)
	}
	return true
}

// commit переносит снаряд в новую точку; false, если позиция не изменилась
func (e *Engine) commit(p *Projectile, origin, dest mgl64.Vec3) bool {
	if dest == origin {
		return false
	}
	p.Position = dest
	p.Reorient()
	return true
}

func (e *Engine) resolveBlock(p *Projectile, block *BlockShape, hitPos mgl64.Vec3) {
	ev := &HitEvent{Projectile: p, HitPos: hitPos, Block: block}
	if !e.fireHitEvent(ev) {
		logging.Trace("снаряд %d: попадание в блок %s отменено", p.ID, block.Pos)
		return
	}
	if block.Reactor != nil {
		block.Reactor.OnProjectileHit(block.Pos, p, hitPos)
	}
	e.OnHitBlock(p, block, hitPos)
}
