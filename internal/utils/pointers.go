package utils

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}

// ValueOr returns *p, or fallback when p is nil.
func ValueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// PtrEquals reports whether p is set and points to v.
func PtrEquals[T comparable](p *T, v T) bool {
	return p != nil && *p == v
}
