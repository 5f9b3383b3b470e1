// internal/retention/policy.go

// Package retention decides which backup artifacts survive under a
// tiered daily/weekly/monthly policy and applies that decision. The
// decision is a pure function of (artifacts, now, policy); nothing is
// cached between runs, so repeated invocations re-derive the same
// answer from whatever the catalog currently reports.
package retention

import (
	"fmt"
	"time"

	"github.com/relicbackup/relic/internal/core"
)

// Policy holds the tier windows. Everything newer than DailyWindow is
// kept; between DailyWindow and WeeklyWindow one artifact per ISO week
// survives; between WeeklyWindow and MonthlyWindow one per calendar
// month; anything older than MonthlyWindow is deleted.
type Policy struct {
	DailyWindow   time.Duration
	WeeklyWindow  time.Duration
	MonthlyWindow time.Duration
}

// Validate enforces 0 < daily <= weekly <= monthly. Violated ordering is
// a configuration error, not something to silently tolerate.
func (p Policy) Validate() error {
	if p.DailyWindow <= 0 || p.WeeklyWindow <= 0 || p.MonthlyWindow <= 0 {
		return core.WrapError(core.ErrConfig,
			fmt.Errorf("retention windows must be positive: daily=%v weekly=%v monthly=%v",
				p.DailyWindow, p.WeeklyWindow, p.MonthlyWindow))
	}
	if p.DailyWindow > p.WeeklyWindow || p.WeeklyWindow > p.MonthlyWindow {
		return core.WrapError(core.ErrConfig,
			fmt.Errorf("retention windows must be ordered daily <= weekly <= monthly: daily=%v weekly=%v monthly=%v",
				p.DailyWindow, p.WeeklyWindow, p.MonthlyWindow))
	}
	return nil
}
