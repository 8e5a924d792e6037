// Package envelope provides Envelope3D, an axis-aligned 3D bounding box
// used to track the spatial extent of geometry and to test how extents
// relate to each other. A zero-thickness Z range gives the 2D form.
//
// The all-zero value is the empty sentinel. An envelope that really is a
// single point at the origin cannot be told apart from it, and callers
// rely on that convention, so IsEmpty means "is the zero sentinel".
package envelope

import (
	"encoding/json"
	"fmt"
	"math"
)

// Bounds is the plain six-field source shape envelopes are built from.
// MinZ and MaxZ are optional so 2D callers can omit them.
type Bounds struct {
	MinX float64  `json:"minX"`
	MinY float64  `json:"minY"`
	MinZ *float64 `json:"minZ,omitempty"`
	MaxX float64  `json:"maxX"`
	MaxY float64  `json:"maxY"`
	MaxZ *float64 `json:"maxZ,omitempty"`
}

// Envelope3D is an axis-aligned box given by its min and max bounds on
// each axis. Bound ordering is not checked; Merge and Intersect keep
// min <= max when their inputs already satisfy it.
//
// Envelope3D is not safe for concurrent mutation.
type Envelope3D struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MinZ float64 `json:"minZ"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
	MaxZ float64 `json:"maxZ"`
}

// New returns the empty sentinel envelope.
func New() Envelope3D {
	return Envelope3D{}
}

// FromBounds copies b into a new envelope. A nil MinZ or MaxZ becomes 0.
func FromBounds(b Bounds) Envelope3D {
	e := Envelope3D{
		MinX: b.MinX,
		MinY: b.MinY,
		MaxX: b.MaxX,
		MaxY: b.MaxY,
	}
	if b.MinZ != nil {
		e.MinZ = *b.MinZ
	}
	if b.MaxZ != nil {
		e.MaxZ = *b.MaxZ
	}
	return e
}

// FromMinMax builds an envelope from a pair of corners.
func FromMinMax(min, max [3]float64) Envelope3D {
	return Envelope3D{
		MinX: min[0], MinY: min[1], MinZ: min[2],
		MaxX: max[0], MaxY: max[1], MaxZ: max[2],
	}
}

// New2D builds a flat envelope with both Z bounds at 0.
func New2D(minX, minY, maxX, maxY float64) Envelope3D {
	return Envelope3D{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// IsEmpty reports whether e is the all-zero sentinel.
func (e Envelope3D) IsEmpty() bool {
	return e.MinX == 0 && e.MinY == 0 && e.MinZ == 0 &&
		e.MaxX == 0 && e.MaxY == 0 && e.MaxZ == 0
}

// Is2D reports whether e lies in the Z = 0 plane.
func (e Envelope3D) Is2D() bool {
	return e.MinZ == 0 && e.MaxZ == 0
}

// Reset returns e to the empty sentinel.
func (e *Envelope3D) Reset() {
	*e = Envelope3D{}
}

// Merge grows e to the union of e and o. An empty e adopts o as is.
func (e *Envelope3D) Merge(o Envelope3D) {
	if e.IsEmpty() {
		*e = o
		return
	}
	e.expand(o)
}

// MergePoint grows e to include (x, y, z). An empty e collapses onto the
// point.
func (e *Envelope3D) MergePoint(x, y, z float64) {
	if e.IsEmpty() {
		*e = point(x, y, z)
		return
	}
	e.expand(point(x, y, z))
}

func point(x, y, z float64) Envelope3D {
	return Envelope3D{MinX: x, MinY: y, MinZ: z, MaxX: x, MaxY: y, MaxZ: z}
}

// expand widens e to cover o without looking at the sentinel.
func (e *Envelope3D) expand(o Envelope3D) {
	e.MinX = math.Min(o.MinX, e.MinX)
	e.MaxX = math.Max(o.MaxX, e.MaxX)
	e.MinY = math.Min(o.MinY, e.MinY)
	e.MaxY = math.Max(o.MaxY, e.MaxY)
	e.MinZ = math.Min(o.MinZ, e.MinZ)
	e.MaxZ = math.Max(o.MaxZ, e.MaxZ)
}

// Intersects reports whether e and o overlap on every axis. Boxes that
// only touch count as intersecting.
func (e Envelope3D) Intersects(o Envelope3D) bool {
	return e.MinX <= o.MaxX && e.MaxX >= o.MinX &&
		e.MinY <= o.MaxY && e.MaxY >= o.MinY &&
		e.MinZ <= o.MaxZ && e.MaxZ >= o.MinZ
}

// Intersect narrows e to its overlap with o. When they do not intersect,
// e becomes the empty sentinel. An empty e that intersects o adopts o.
func (e *Envelope3D) Intersect(o Envelope3D) {
	if !e.Intersects(o) {
		e.Reset()
		return
	}
	if e.IsEmpty() {
		*e = o
		return
	}
	e.MinX = math.Max(o.MinX, e.MinX)
	e.MaxX = math.Min(o.MaxX, e.MaxX)
	e.MinY = math.Max(o.MinY, e.MinY)
	e.MaxY = math.Min(o.MaxY, e.MaxY)
	e.MinZ = math.Max(o.MinZ, e.MinZ)
	e.MaxZ = math.Min(o.MaxZ, e.MaxZ)
}

// Contains reports whether e encloses o. Boundaries are inclusive, so an
// envelope contains itself.
func (e Envelope3D) Contains(o Envelope3D) bool {
	return e.MinX <= o.MinX && e.MinY <= o.MinY && e.MinZ <= o.MinZ &&
		e.MaxX >= o.MaxX && e.MaxY >= o.MaxY && e.MaxZ >= o.MaxZ
}

// Merged returns the result of merging o into a copy of e.
func (e Envelope3D) Merged(o Envelope3D) Envelope3D {
	e.Merge(o)
	return e
}

// MergedPoint returns the result of merging a point into a copy of e.
func (e Envelope3D) MergedPoint(x, y, z float64) Envelope3D {
	e.MergePoint(x, y, z)
	return e
}

// Intersection returns the result of intersecting a copy of e with o.
func (e Envelope3D) Intersection(o Envelope3D) Envelope3D {
	e.Intersect(o)
	return e
}

// Extent merges envs, in order, into a fresh envelope using Merge, so
// all-zero inputs are treated as the empty sentinel. Use Accumulator when
// an envelope at the origin is real geometry.
func Extent(envs ...Envelope3D) Envelope3D {
	var ext Envelope3D
	for _, e := range envs {
		ext.Merge(e)
	}
	return ext
}

// Min returns the minimum corner.
func (e Envelope3D) Min() [3]float64 {
	return [3]float64{e.MinX, e.MinY, e.MinZ}
}

// Max returns the maximum corner.
func (e Envelope3D) Max() [3]float64 {
	return [3]float64{e.MaxX, e.MaxY, e.MaxZ}
}

// Bounds exports e to the plain source shape with both Z bounds set.
func (e Envelope3D) Bounds() Bounds {
	minZ, maxZ := e.MinZ, e.MaxZ
	return Bounds{
		MinX: e.MinX,
		MinY: e.MinY,
		MinZ: &minZ,
		MaxX: e.MaxX,
		MaxY: e.MaxY,
		MaxZ: &maxZ,
	}
}

func (e Envelope3D) String() string {
	return fmt.Sprintf("Envelope3D(%g %g %g, %g %g %g)",
		e.MinX, e.MinY, e.MinZ, e.MaxX, e.MaxY, e.MaxZ)
}

// UnmarshalJSON decodes an object with minX..maxZ keys. Missing Z keys
// decode as 0.
func (e *Envelope3D) UnmarshalJSON(data []byte) error {
	var b Bounds
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("envelope: %w", err)
	}
	*e = FromBounds(b)
	return nil
}
