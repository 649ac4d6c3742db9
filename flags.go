package rhi

import "math/bits"

// Flags is a bitset over the single-bit values of the flag enum T.
//
// The type parameter ties a set to its enum, so mixing, for example,
// buffer usage bits into a texture usage set does not compile:
//
//	usage := rhi.NewFlags(rhi.BufferUsageUniform, rhi.BufferUsageMapWrite)
//	usage.Has(rhi.BufferUsageMapWrite) // true
type Flags[T ~uint32] uint32

// NewFlags returns the set containing bits.
func NewFlags[T ~uint32](bs ...T) Flags[T] {
	var f Flags[T]
	for _, b := range bs {
		f |= Flags[T](b)
	}
	return f
}

// With returns f with bs added.
func (f Flags[T]) With(bs ...T) Flags[T] {
	return f | NewFlags(bs...)
}

// Without returns f with bs removed.
func (f Flags[T]) Without(bs ...T) Flags[T] {
	return f &^ NewFlags(bs...)
}

// Union returns the bitwise OR of f and o.
func (f Flags[T]) Union(o Flags[T]) Flags[T] { return f | o }

// Intersect returns the bitwise AND of f and o.
func (f Flags[T]) Intersect(o Flags[T]) Flags[T] { return f & o }

// Has reports whether every bit of b is set.
func (f Flags[T]) Has(b T) bool {
	return uint32(f)&uint32(b) == uint32(b)
}

// HasAll reports whether o is a subset of f.
func (f Flags[T]) HasAll(o Flags[T]) bool { return f&o == o }

// HasAny reports whether f and o share a bit.
func (f Flags[T]) HasAny(o Flags[T]) bool { return f&o != 0 }

// IsEmpty reports whether no bit is set.
func (f Flags[T]) IsEmpty() bool { return f == 0 }

// Count returns the number of set bits.
func (f Flags[T]) Count() int { return bits.OnesCount32(uint32(f)) }

// Bits returns the set bits in ascending order.
func (f Flags[T]) Bits() []T {
	out := make([]T, 0, f.Count())
	for v := uint32(f); v != 0; v &= v - 1 {
		out = append(out, T(v&-v))
	}
	return out
}

// Value returns the raw bit pattern.
func (f Flags[T]) Value() uint32 { return uint32(f) }
