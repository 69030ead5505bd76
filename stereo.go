package patch

// Channel identifies a side of stereo pair.
type Channel int

const (
	// Left channel.
	Left Channel = iota
	// Right channel.
	Right
)

func (c Channel) String() string {
	switch c {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// Stereo is a pair of signals for left and right channels. Nodes shared
// between channels are computed once per batch as long as both sides are
// sampled with the same context.
type Stereo[L, R any] struct {
	Left  Signal[L]
	Right Signal[R]
}

// NewStereo returns stereo pair.
func NewStereo[L, R any](left Signal[L], right Signal[R]) Stereo[L, R] {
	return Stereo[L, R]{Left: left, Right: right}
}

// StereoFunc builds both channels with f.
func StereoFunc[T any](f func(Channel) Signal[T]) Stereo[T, T] {
	return Stereo[T, T]{Left: f(Left), Right: f(Right)}
}

// Sample returns batches of both channels. Left channel is sampled first.
func (s Stereo[L, R]) Sample(ctx *Ctx) (Buf[L], Buf[R]) {
	return s.Left.Sample(ctx), s.Right.Sample(ctx)
}
