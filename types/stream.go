package types

// Update is one delivery of a live stream. Err is set when the stream
// could not reload; Value then holds nothing new.
type Update[T any] struct {
	Value T
	Err   error
}
