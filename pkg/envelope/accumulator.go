package envelope

// Accumulator builds an extent from envelopes and points while tracking
// emptiness explicitly, so geometry at the origin is not mistaken for the
// empty sentinel. The zero value is ready to use.
type Accumulator struct {
	env   Envelope3D
	valid bool
}

// Add widens the extent to cover e. Every e is treated as real geometry,
// including the all-zero envelope.
func (a *Accumulator) Add(e Envelope3D) {
	if !a.valid {
		a.env, a.valid = e, true
		return
	}
	a.env.expand(e)
}

// AddPoint widens the extent to cover (x, y, z).
func (a *Accumulator) AddPoint(x, y, z float64) {
	a.Add(point(x, y, z))
}

// Empty reports whether nothing has been added.
func (a *Accumulator) Empty() bool {
	return !a.valid
}

// Envelope returns the accumulated extent, or the empty sentinel when
// nothing was added.
func (a *Accumulator) Envelope() Envelope3D {
	return a.env
}

// Reset discards everything added so far.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}
