package object

import "fmt"

// Args carries the arguments of a constructor or method call.
type Args []any

func (a Args) Len() int { return len(a) }

// Float returns argument i as a float64. Integer arguments are widened.
func (a Args) Float(i int) (float64, error) {
	if i < 0 || i >= len(a) {
		return 0, fmt.Errorf("%w: missing argument %d", ErrBadArgument, i)
	}
	switch v := a[i].(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("%w: argument %d is %T, want float", ErrBadArgument, i, a[i])
}

// FloatOr returns argument i as a float64, or def when it is absent.
func (a Args) FloatOr(i int, def float64) (float64, error) {
	if i >= len(a) {
		return def, nil
	}
	return a.Float(i)
}

func (a Args) Int(i int) (int, error) {
	if i < 0 || i >= len(a) {
		return 0, fmt.Errorf("%w: missing argument %d", ErrBadArgument, i)
	}
	switch v := a[i].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	}
	return 0, fmt.Errorf("%w: argument %d is %T, want int", ErrBadArgument, i, a[i])
}

func (a Args) String(i int) (string, error) {
	if i < 0 || i >= len(a) {
		return "", fmt.Errorf("%w: missing argument %d", ErrBadArgument, i)
	}
	s, ok := a[i].(string)
	if !ok {
		return "", fmt.Errorf("%w: argument %d is %T, want string", ErrBadArgument, i, a[i])
	}
	return s, nil
}

// Arg returns argument i asserted to T.
func Arg[T any](a Args, i int) (T, error) {
	var zero T
	if i < 0 || i >= len(a) {
		return zero, fmt.Errorf("%w: missing argument %d", ErrBadArgument, i)
	}
	v, ok := a[i].(T)
	if !ok {
		return zero, fmt.Errorf("%w: argument %d is %T, want %T", ErrBadArgument, i, a[i], zero)
	}
	return v, nil
}
