package vec

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// NormalizeIfNotZero возвращает нормализованный вектор или нулевой вектор,
// если длина равна нулю
func NormalizeIfNotZero(v mgl64.Vec3) mgl64.Vec3 {
	if v.LenSqr() == 0 {
		return mgl64.Vec3{}
	}
	return v.Normalize()
}

// Horizontal обнуляет вертикальную составляющую
func Horizontal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0], 0, v[2]}
}

// IsFinite проверяет, что все компоненты конечны
func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// YawPitch вычисляет углы поворота (в градусах) по направлению движения.
// Yaw отсчитывается от оси +Z, pitch положителен при движении вверх.
func YawPitch(dir mgl64.Vec3) (yaw, pitch float64) {
	horizontal := math.Sqrt(dir[0]*dir[0] + dir[2]*dir[2])
	yaw = mgl64.RadToDeg(math.Atan2(dir[0], dir[2]))
	pitch = mgl64.RadToDeg(math.Atan2(dir[1], horizontal))
	return yaw, pitch
}

// DirectionFromYawPitch возвращает единичный вектор взгляда.
// Используются те же соглашения, что и в YawPitch.
func DirectionFromYawPitch(yaw, pitch float64) mgl64.Vec3 {
	yawRad := mgl64.DegToRad(yaw)
	pitchRad := mgl64.DegToRad(pitch)
	cosPitch := math.Cos(pitchRad)
	return mgl64.Vec3{
		math.Sin(yawRad) * cosPitch,
		math.Sin(pitchRad),
		math.Cos(yawRad) * cosPitch,
	}
}

// RotateY поворачивает вектор вокруг вертикальной оси на угол в градусах
// (в том же направлении, в котором растёт yaw)
func RotateY(v mgl64.Vec3, degrees float64) mgl64.Vec3 {
	rad := mgl64.DegToRad(degrees)
	sin, cos := math.Sincos(rad)
	return mgl64.Vec3{
		v[0]*cos + v[2]*sin,
		v[1],
		-v[0]*sin + v[2]*cos,
	}
}
