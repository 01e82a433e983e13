package evaluator

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/raulk/clock"

	"lox/object"
)

var errClockUnreadable = errors.New("Can't read the host clock.")

// clock() returns the current Unix time in whole seconds.
func newClockBuiltin(clk clock.Clock) *object.Builtin {
	return &object.Builtin{
		Name:  "clock",
		Arity: 0,
		Fn: func(args []object.Object) (object.Object, error) {
			now := clk.Now()
			if now.Before(time.Unix(0, 0)) {
				return nil, errClockUnreadable
			}
			return &object.Number{Value: math.Round(float64(now.UnixNano()) / 1e9)}, nil
		},
	}
}
