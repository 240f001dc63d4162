package nav

import "math"

// Vec2 is a point on the ground plane.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (a Vec2) Add(b Vec2) Vec2      { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2      { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(k float64) Vec2 { return Vec2{a.X * k, a.Y * k} }
func (a Vec2) Dot(b Vec2) float64   { return a.X*b.X + a.Y*b.Y }
func (a Vec2) Len() float64         { return math.Hypot(a.X, a.Y) }
func (a Vec2) LenSq() float64       { return a.X*a.X + a.Y*a.Y }
func (a Vec2) Dist(b Vec2) float64  { return a.Sub(b).Len() }
func (a Vec2) Rotate(rad float64) Vec2 {
	s, c := math.Sincos(rad)
	return Vec2{a.X*c - a.Y*s, a.X*s + a.Y*c}
}

// Shape is anything an attack can be aimed at.
type Shape interface {
	ClosestPoint(p Vec2) Vec2
}

// Circle is the collision shape of a unit.
type Circle struct {
	Center Vec2
	Radius float64
}

// ClosestPoint returns the point of the disc nearest to p; p itself when inside.
func (c Circle) ClosestPoint(p Vec2) Vec2 {
	d := p.Sub(c.Center)
	l := d.Len()
	if l <= c.Radius {
		return p
	}
	return c.Center.Add(d.Scale(c.Radius / l))
}

// Obstacle is a box rotated around the vertical axis. Length runs along the
// local X axis, Width along local Y.
type Obstacle struct {
	Center   Vec2    `json:"center"`
	Length   float64 `json:"length"`
	Width    float64 `json:"width"`
	Rotation float64 `json:"rotation"` // degrees
}

func (o Obstacle) halfExtents() Vec2 { return Vec2{o.Length / 2, o.Width / 2} }

func (o Obstacle) toLocal(p Vec2) Vec2 {
	return p.Sub(o.Center).Rotate(-o.Rotation * math.Pi / 180)
}

// Inflate grows the box by r on every side.
func (o Obstacle) Inflate(r float64) Obstacle {
	o.Length += 2 * r
	o.Width += 2 * r
	return o
}

// Contains reports whether p lies inside or on the box.
func (o Obstacle) Contains(p Vec2) bool {
	l := o.toLocal(p)
	h := o.halfExtents()
	return math.Abs(l.X) <= h.X && math.Abs(l.Y) <= h.Y
}

// Intersects reports whether the segment a-b touches the box.
func (o Obstacle) Intersects(a, b Vec2) bool {
	la, lb := o.toLocal(a), o.toLocal(b)
	h := o.halfExtents()
	d := lb.Sub(la)

	// Liang-Barsky clipping against the local slab pair.
	t0, t1 := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
		return true
	}
	return clip(-d.X, la.X+h.X) &&
		clip(d.X, h.X-la.X) &&
		clip(-d.Y, la.Y+h.Y) &&
		clip(d.Y, h.Y-la.Y) &&
		t0 <= t1
}

// Obstacles is the obstacle-only occlusion layer.
type Obstacles []Obstacle

// Blocked reports whether any obstacle lies on the segment a-b.
func (os Obstacles) Blocked(a, b Vec2) bool {
	for _, o := range os {
		if o.Intersects(a, b) {
			return true
		}
	}
	return false
}
