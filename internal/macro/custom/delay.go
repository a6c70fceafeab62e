package custom

import (
	"context"
	"math"
	"time"

	"github.com/dshills/uimacro/internal/macro"
)

// DelayName is the operation type name of Delay.
const DelayName = "DELAY"

// delaySlice bounds how long Delay waits between stop checks.
const delaySlice = 100 * time.Millisecond

// Delay pauses playback for a number of seconds.
type Delay struct{}

// Name implements Operation.
func (Delay) Name() string { return DelayName }

// Description implements Operation.
func (Delay) Description() string { return "Delay" }

// Schema implements Operation.
func (Delay) Schema() []macro.ParamSpec {
	return []macro.ParamSpec{
		{Name: "Seconds", DataType: macro.DataFloat, Default: macro.Float(1)},
	}
}

// Execute implements Operation. The wait ends early when playback is
// stopped.
func (Delay) Execute(ctx context.Context, env *Env, params []*macro.Parameter) error {
	remaining := seconds(macro.AsFloat(params[0].Value()))
	for remaining > 0 {
		if env.stopped() {
			return ErrStopped
		}
		d := min(remaining, delaySlice)
		if err := env.sleep(ctx, d); err != nil {
			return err
		}
		remaining -= d
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
