package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidBox возвращается для коробок с NaN/Inf или перевёрнутыми границами
var ErrInvalidBox = errors.New("invalid bounding box")

// AABB представляет ось-ориентированный параллелепипед в мировых координатах
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// NewAABB создаёт коробку по двум произвольным углам
func NewAABB(a, b mgl64.Vec3) AABB {
	return AABB{
		Min: mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])},
		Max: mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])},
	}
}

// BoxAround создаёт коробку с центром center и половинными размерами half
func BoxAround(center, half mgl64.Vec3) AABB {
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// Offset сдвигает коробку на вектор
func (b AABB) Offset(d mgl64.Vec3) AABB {
	return AABB{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// Grow расширяет коробку во все стороны на delta
func (b AABB) Grow(delta float64) AABB {
	d := mgl64.Vec3{delta, delta, delta}
	return AABB{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

// Union возвращает наименьшую коробку, содержащую обе
func (b AABB) Union(o AABB) AABB {
	return NewAABB(
		mgl64.Vec3{math.Min(b.Min[0], o.Min[0]), math.Min(b.Min[1], o.Min[1]), math.Min(b.Min[2], o.Min[2])},
		mgl64.Vec3{math.Max(b.Max[0], o.Max[0]), math.Max(b.Max[1], o.Max[1]), math.Max(b.Max[2], o.Max[2])},
	)
}

// Center возвращает центр коробки
func (b AABB) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Intersects проверяет строгое пересечение (касание гранями не считается)
func (b AABB) Intersects(o AABB) bool {
	return b.Min[0] < o.Max[0] && b.Max[0] > o.Min[0] &&
		b.Min[1] < o.Max[1] && b.Max[1] > o.Min[1] &&
		b.Min[2] < o.Max[2] && b.Max[2] > o.Min[2]
}

// Overlaps проверяет пересечение с учётом касания гранями.
// Используется для выборки кандидатов, где касание ещё может дать попадание луча.
func (b AABB) Overlaps(o AABB) bool {
	return b.Min[0] <= o.Max[0] && b.Max[0] >= o.Min[0] &&
		b.Min[1] <= o.Max[1] && b.Max[1] >= o.Min[1] &&
		b.Min[2] <= o.Max[2] && b.Max[2] >= o.Min[2]
}

// Contains проверяет, лежит ли точка внутри коробки (границы включительно)
func (b AABB) Contains(p mgl64.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Validate проверяет корректность коробки
func (b AABB) Validate() error {
	if !vec.IsFinite(b.Min) || !vec.IsFinite(b.Max) {
		return fmt.Errorf("%w: non-finite bounds %v..%v", ErrInvalidBox, b.Min, b.Max)
	}
	for i := 0; i < 3; i++ {
		if b.Min[i] > b.Max[i] {
			return fmt.Errorf("%w: min %v exceeds max %v", ErrInvalidBox, b.Min, b.Max)
		}
	}
	return nil
}

// Ray описывает отрезок движения за тик: точка начала и полное смещение.
// Параметр t = 0 соответствует Origin, t = 1 - Origin + Dir.
type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
}

// At возвращает точку на луче для параметра t
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Bounds возвращает коробку, охватывающую весь отрезок
func (r Ray) Bounds() AABB {
	return NewAABB(r.Origin, r.Origin.Add(r.Dir))
}

// IntersectRay находит параметр входа луча в коробку методом плит.
// Возвращает false, если отрезок [0,1] не пересекает коробку.
// Если начало луча внутри коробки, возвращается 0.
func (b AABB) IntersectRay(r Ray) (float64, bool) {
	tNear := math.Inf(-1)
	tFar := math.Inf(1)

	for i := 0; i < 3; i++ {
		if r.Dir[i] == 0 {
			// Луч параллелен плитам: начало обязано лежать между ними
			if r.Origin[i] < b.Min[i] || r.Origin[i] > b.Max[i] {
				return 0, false
			}
			continue
		}

		inv := 1.0 / r.Dir[i]
		t1 := (b.Min[i] - r.Origin[i]) * inv
		t2 := (b.Max[i] - r.Origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tNear {
			tNear = t1
		}
		if t2 < tFar {
			tFar = t2
		}
		if tNear > tFar {
			return 0, false
		}
	}

	if tFar < 0 || tNear > 1 {
		return 0, false
	}
	if tNear < 0 {
		tNear = 0
	}
	return tNear, true
}

// Shape представляет форму коллизии блока как объединение коробок
// в локальных координатах блока (0..1 по каждой оси для полного куба).
// Пустая форма означает отсутствие коллизии (воздух).
type Shape []AABB

// FullCube - стандартная форма полного блока
var FullCube = Shape{{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}}

// Empty возвращает true, если у формы нет коллизии
func (s Shape) Empty() bool {
	return len(s) == 0
}

// At переносит форму в мировые координаты блока pos
func (s Shape) At(pos vec.Vec3) Shape {
	if len(s) == 0 {
		return nil
	}
	origin := pos.ToFloat()
	out := make(Shape, len(s))
	for i, box := range s {
		out[i] = box.Offset(origin)
	}
	return out
}

// Bounds возвращает коробку, охватывающую всю форму
func (s Shape) Bounds() AABB {
	if len(s) == 0 {
		return AABB{}
	}
	bounds := s[0]
	for _, box := range s[1:] {
		bounds = bounds.Union(box)
	}
	return bounds
}

// Validate проверяет все коробки формы
func (s Shape) Validate() error {
	for i, box := range s {
		if err := box.Validate(); err != nil {
			return fmt.Errorf("shape part %d: %w", i, err)
		}
	}
	return nil
}

// IntersectRay возвращает ближайший параметр пересечения луча с формой
func (s Shape) IntersectRay(r Ray) (float64, bool) {
	best := math.Inf(1)
	hit := false
	for _, box := range s {
		if t, ok := box.IntersectRay(r); ok && t < best {
			best = t
			hit = true
		}
	}
	return best, hit
}

// Intersects проверяет пересечение формы с коробкой
func (s Shape) Intersects(box AABB) bool {
	for _, part := range s {
		if part.Intersects(box) {
			return true
		}
	}
	return false
}
