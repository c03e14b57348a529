// Package facade is the thin RPC surface over the use-case layer. Every
// method runs exactly one use-case and wraps its outcome in the wire
// envelope; business branching lives below, transport concerns above.
package facade

import (
	"context"
	"encoding/json"

	"github.com/pulsefit/coach-backend/internal/platform/apperr"
)

type Result struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func OK(data any) Result {
	return Result{Success: true, Data: data}
}

func Fail(err error) Result {
	return Result{Success: false, Error: &ErrorBody{
		Kind:    string(apperr.KindOf(err)),
		Message: err.Error(),
	}}
}

// Caller is what the RPC router sees: a facade name resolves to one Caller
// and the method string picks the operation.
type Caller interface {
	Call(ctx context.Context, method string, payload json.RawMessage) Result
}

func unknownMethod(facade, method string) Result {
	return Fail(apperr.Newf(apperr.KindValidation, "unknown method %s.%s", facade, method))
}

func badPayload(err error) Result {
	return Fail(apperr.Newf(apperr.KindValidation, "bad payload: %v", err))
}

func decode[T any](payload json.RawMessage, out *T) error {
	if len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, out)
}

// run collapses the Execute-then-wrap pattern shared by every method.
func run[I, O any](ctx context.Context, payload json.RawMessage, prep func(*I), exec func(context.Context, I) (O, error)) Result {
	var in I
	if err := decode(payload, &in); err != nil {
		return badPayload(err)
	}
	if prep != nil {
		prep(&in)
	}
	out, err := exec(ctx, in)
	if err != nil {
		return Fail(err)
	}
	return OK(out)
}
