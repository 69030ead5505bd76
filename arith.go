package patch

import "math"

type (
	// Number is a constraint for values which support arithmetic.
	Number interface {
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
			~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
			~float32 | ~float64
	}

	// Float is a constraint for floating-point values.
	Float interface {
		~float32 | ~float64
	}
)

func add[T Number](a, b T) T { return a + b }
func sub[T Number](a, b T) T { return a - b }
func mul[T Number](a, b T) T { return a * b }
func div[T Number](a, b T) T { return a / b }
func and(a, b bool) bool     { return a && b }
func or(a, b bool) bool      { return a || b }

// Add returns pairwise sum of two signals.
func Add[T Number](a, b Signal[T]) *ZipWithSignal[T, T, T] { return ZipWith(a, b, add[T]) }

// Sub returns pairwise difference of two signals.
func Sub[T Number](a, b Signal[T]) *ZipWithSignal[T, T, T] { return ZipWith(a, b, sub[T]) }

// Mul returns pairwise product of two signals.
func Mul[T Number](a, b Signal[T]) *ZipWithSignal[T, T, T] { return ZipWith(a, b, mul[T]) }

// Div returns pairwise quotient of two signals.
func Div[T Number](a, b Signal[T]) *ZipWithSignal[T, T, T] { return ZipWith(a, b, div[T]) }

// And returns pairwise conjunction of two gate signals.
func And(a, b Signal[bool]) *ZipWithSignal[bool, bool, bool] { return ZipWith(a, b, and) }

// Or returns pairwise disjunction of two gate signals.
func Or(a, b Signal[bool]) *ZipWithSignal[bool, bool, bool] { return ZipWith(a, b, or) }

// AddScalar adds k to every value of the signal.
func AddScalar[T Number](s Signal[T], k T) *ZipWithSignal[T, T, T] { return Add(s, Signal[T](Const(k))) }

// SubScalar subtracts k from every value of the signal.
func SubScalar[T Number](s Signal[T], k T) *ZipWithSignal[T, T, T] { return Sub(s, Signal[T](Const(k))) }

// MulScalar multiplies every value of the signal by k.
func MulScalar[T Number](s Signal[T], k T) *ZipWithSignal[T, T, T] { return Mul(s, Signal[T](Const(k))) }

// DivScalar divides every value of the signal by k.
func DivScalar[T Number](s Signal[T], k T) *ZipWithSignal[T, T, T] { return Div(s, Signal[T](Const(k))) }

// ScalarSub subtracts every value of the signal from k.
func ScalarSub[T Number](k T, s Signal[T]) *ZipWithSignal[T, T, T] { return Sub(Signal[T](Const(k)), s) }

// ScalarDiv divides k by every value of the signal.
func ScalarDiv[T Number](k T, s Signal[T]) *ZipWithSignal[T, T, T] { return Div(Signal[T](Const(k)), s) }

// AddFrame adds the frame signal value to every value of the signal. The
// frame signal is sampled once per batch.
func AddFrame[T Number](s Signal[T], f FrameSignal[T]) *ZipWithSignal[T, T, T] {
	return Add(s, Signal[T](Lift(f)))
}

// SubFrame subtracts the frame signal value from every value of the signal.
func SubFrame[T Number](s Signal[T], f FrameSignal[T]) *ZipWithSignal[T, T, T] {
	return Sub(s, Signal[T](Lift(f)))
}

// MulFrame multiplies every value of the signal by the frame signal value.
func MulFrame[T Number](s Signal[T], f FrameSignal[T]) *ZipWithSignal[T, T, T] {
	return Mul(s, Signal[T](Lift(f)))
}

// DivFrame divides every value of the signal by the frame signal value.
func DivFrame[T Number](s Signal[T], f FrameSignal[T]) *ZipWithSignal[T, T, T] {
	return Div(s, Signal[T](Lift(f)))
}

// Abs returns absolute values of the signal.
func Abs[T Float](s Signal[T]) *MapSignal[T, T] {
	return Map(s, func(v T) T { return T(math.Abs(float64(v))) })
}

// ClampSymmetric clamps values of s between -|limit| and |limit|.
func ClampSymmetric[T Float](s, limit Signal[T]) *ZipWithSignal[T, T, T] {
	return ZipWith(s, limit, clampSymmetric[T])
}

// Exp01 maps [0, 1] onto [0, 1] with exponential curve of sharpness k. See
// exp01 for the definition.
func Exp01[T Float](s, k Signal[T]) *ZipWithSignal[T, T, T] {
	return ZipWith(s, k, exp01[T])
}

// Inv01 returns 1 - s.
func Inv01[T Float](s Signal[T]) *ZipWithSignal[T, T, T] {
	return ScalarSub(1, s)
}

// SignedTo01 maps [-1, 1] onto [0, 1].
func SignedTo01[T Float](s Signal[T]) *MapSignal[T, T] {
	return Map(s, func(v T) T { return (v + 1) / 2 })
}

// RisingEdge converts a gate into a trigger which is true only for the
// first sample of every gate.
func RisingEdge(gate Signal[bool]) *MapMutSignal[bool, bool] {
	var previous bool
	return MapMut(gate, func(v bool) bool {
		out := v && !previous
		previous = v
		return out
	})
}

// TrigToGate converts a trigger into a gate which stays open for period
// seconds after the last trigger.
func TrigToGate[T Float](trig Signal[bool], periodS Signal[T]) *MapMutSignal[Pair[bool, T], bool] {
	var remaining float64
	return MapMutCtx(Signal[Pair[bool, T]](Zip(trig, periodS)), func(v Pair[bool, T], ctx *Ctx) bool {
		if v.A {
			remaining = float64(v.B)
		}
		remaining -= ctx.SamplePeriod()
		return remaining > 0
	})
}

func clampSymmetric[T Float](x, limit T) T {
	m := T(math.Abs(float64(limit)))
	if x > m {
		return m
	}
	if x < -m {
		return -m
	}
	return x
}

// exp01 is
//
//	k > 0  => exp(k * (x - a)) - b
//	k == 0 => x
//	k < 0  => -(ln(x + b) / k) + a
//
// where a and b are chosen so that f(0) = 0 and f(1) = 1.
func exp01[T Float](x, k T) T {
	kf := float64(k)
	if kf == 0 {
		return x
	}
	b := 1 / math.Expm1(math.Abs(kf))
	a := -math.Log(b) / math.Abs(kf)
	if kf > 0 {
		return T(math.Exp(kf*(float64(x)-a)) - b)
	}
	return T(-(math.Log(float64(x)+b) / kf) + a)
}
