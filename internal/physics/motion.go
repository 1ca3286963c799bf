package physics

import "github.com/go-gl/mathgl/mgl64"

// Medium определяет среду, в которой движется снаряд
type Medium uint8

const (
	MediumAir Medium = iota
	MediumLiquid
)

func (m Medium) String() string {
	switch m {
	case MediumAir:
		return "air"
	case MediumLiquid:
		return "liquid"
	default:
		return "unknown"
	}
}

// Drag хранит коэффициенты сопротивления для разных сред
type Drag struct {
	Air    float64
	Liquid float64
}

// Factor возвращает коэффициент сопротивления для среды
func (d Drag) Factor(m Medium) float64 {
	if m == MediumLiquid {
		return d.Liquid
	}
	return d.Air
}

// Integrate вычисляет скорость на следующем тике:
// гравитация вычитается до применения сопротивления, сопротивление действует на все оси.
func Integrate(v mgl64.Vec3, gravity, drag float64) mgl64.Vec3 {
	k := 1 - drag
	return mgl64.Vec3{
		v[0] * k,
		(v[1] - gravity) * k,
		v[2] * k,
	}
}
