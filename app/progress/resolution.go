package progress

import (
	"fmt"
)

// Resolution is the outcome of one resolver run. Record is nil when no
// source produced a value. Inferred marks a value taken from the stale cache.
type Resolution struct {
	Record   *Record
	Inferred bool
}

func (r Resolution) Known() bool {
	return r.Record != nil
}

// Percent returns the resolved percentage and whether there is one.
func (r Resolution) Percent() (int, bool) {
	if r.Record == nil {
		return 0, false
	}
	return r.Record.Percent, true
}

func (r Resolution) String() string {
	switch {
	case r.Record == nil:
		return "in progress, percentage unknown"
	case r.Inferred:
		return fmt.Sprintf("≈%d%%, inferred from %s", r.Record.Percent, r.Record.Source)
	default:
		return fmt.Sprintf("%d%%", r.Record.Percent)
	}
}
