package remotedata

import "fmt"

// Tag identifies which of the four states a RemoteData value is in.
type Tag int

const (
	TagNotAsked Tag = iota
	TagLoading
	TagFailure
	TagSuccess
)

// String returns the lowercase tag name, used as a metrics label and in logs.
func (t Tag) String() string {
	switch t {
	case TagNotAsked:
		return "not_asked"
	case TagLoading:
		return "loading"
	case TagFailure:
		return "failure"
	case TagSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// RemoteData is the lifecycle of one asynchronous value: not requested, in flight,
// failed, or succeeded. The set of implementations is closed; values are built with
// NotAsked, Loading, Failure and Success, and consumed with Fold.
type RemoteData[V any] interface {
	Tag() Tag
	sealed(V)
}

type notAsked[V any] struct{}

type loading[V any] struct{}

type failure[V any] struct{ err error }

type success[V any] struct{ value V }

func (notAsked[V]) Tag() Tag { return TagNotAsked }
func (loading[V]) Tag() Tag  { return TagLoading }
func (failure[V]) Tag() Tag  { return TagFailure }
func (success[V]) Tag() Tag  { return TagSuccess }

func (notAsked[V]) sealed(V) {}
func (loading[V]) sealed(V)  {}
func (failure[V]) sealed(V)  {}
func (success[V]) sealed(V)  {}

// NotAsked returns the state of a value nobody has requested yet.
func NotAsked[V any]() RemoteData[V] { return notAsked[V]{} }

// Loading returns the state of a value whose fetch is in flight.
func Loading[V any]() RemoteData[V] { return loading[V]{} }

// Failure returns the state of a fetch that completed with err.
// A nil err is replaced so the failure branch always receives a usable error.
func Failure[V any](err error) RemoteData[V] {
	if err == nil {
		err = fmt.Errorf("unknown failure")
	}
	return failure[V]{err: err}
}

// Success returns the state of a fetch that completed with value.
func Success[V any](value V) RemoteData[V] { return success[V]{value: value} }

// Fold calls exactly one of the four handlers, chosen by the state of rd, and returns
// its result. A nil rd folds as NotAsked.
func Fold[V, R any](
	rd RemoteData[V],
	onNotAsked func() R,
	onLoading func() R,
	onFailure func(error) R,
	onSuccess func(V) R,
) R {
	switch v := rd.(type) {
	case loading[V]:
		return onLoading()
	case failure[V]:
		return onFailure(v.err)
	case success[V]:
		return onSuccess(v.value)
	default:
		return onNotAsked()
	}
}

// Map transforms the value of a Success and passes every other state through.
func Map[V, W any](rd RemoteData[V], fn func(V) W) RemoteData[W] {
	return Fold(rd,
		NotAsked[W],
		Loading[W],
		Failure[W],
		func(v V) RemoteData[W] { return Success(fn(v)) },
	)
}

func tagOf[V any](rd RemoteData[V]) Tag {
	if rd == nil {
		return TagNotAsked
	}
	return rd.Tag()
}

// IsNotAsked reports whether rd has not been requested.
func IsNotAsked[V any](rd RemoteData[V]) bool { return tagOf(rd) == TagNotAsked }

// IsLoading reports whether rd is in flight.
func IsLoading[V any](rd RemoteData[V]) bool { return tagOf(rd) == TagLoading }

// IsFailure reports whether rd completed with an error.
func IsFailure[V any](rd RemoteData[V]) bool { return tagOf(rd) == TagFailure }

// IsSuccess reports whether rd completed with a value.
func IsSuccess[V any](rd RemoteData[V]) bool { return tagOf(rd) == TagSuccess }

// String renders rd for logs, e.g. "failure(connection refused)".
func String[V any](rd RemoteData[V]) string {
	return Fold(rd,
		func() string { return TagNotAsked.String() },
		func() string { return TagLoading.String() },
		func(err error) string { return fmt.Sprintf("%s(%v)", TagFailure, err) },
		func(V) string { return TagSuccess.String() },
	)
}
