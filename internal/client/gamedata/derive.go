package gamedata

import "github.com/antonk9218/skdesk/internal/client/api"

// apUnitSecs is the fixed regeneration interval of the AP gauge: one unit
// every six minutes.
const apUnitSecs = 6 * 60

// GaugeState is the live projection of a regenerating or linearly charging
// gauge. RemainSecs and RecoverTime are -1 when nothing is pending (gauge
// full or subtree absent).
type GaugeState struct {
	Current     int
	Max         int
	RemainSecs  int64
	RecoverTime int64
}

// Full reports whether the gauge has reached its cap.
func (g GaugeState) Full() bool {
	return g.Max > 0 && g.Current >= g.Max
}

// DeriveAP back-computes the current AP level from the reported
// full-recovery instant. The service reports Current as of fetch time; the
// remaining time to full at the fixed per-unit interval is the fresher
// signal, so the level is reconstructed from it:
//
//	actual = max - floor((recoveryTime - now)/unit + 1)
//
// A nil subtree yields the zero sentinel {0, 0, -1, -1}.
func DeriveAP(ap *api.APInfo, now int64) GaugeState {
	if ap == nil {
		return GaugeState{RemainSecs: -1, RecoverTime: -1}
	}

	maxAP := ap.Max
	if maxAP <= 0 {
		maxAP = 130
	}

	if ap.Current >= maxAP {
		return GaugeState{Current: ap.Current, Max: maxAP, RemainSecs: -1, RecoverTime: -1}
	}
	if ap.CompleteRecoveryTime < now {
		return GaugeState{Current: maxAP, Max: maxAP, RemainSecs: -1, RecoverTime: -1}
	}

	remain := ap.CompleteRecoveryTime - now
	actual := maxAP - int(remain/apUnitSecs+1)
	if actual < 0 {
		actual = 0
	}
	return GaugeState{
		Current:     actual,
		Max:         maxAP,
		RemainSecs:  remain,
		RecoverTime: ap.CompleteRecoveryTime,
	}
}

// DeriveLabor interpolates the drone pool linearly across the originally
// reported refill window. RemainSecs == 0 means the service already
// resolved the value, so it is reported as-is. A zero or negative
// denominator disables extrapolation and the last known value is returned.
// A nil subtree yields {0, 0, -1, -1}.
func DeriveLabor(labor *api.Labor, now int64) GaugeState {
	if labor == nil {
		return GaugeState{RemainSecs: -1, RecoverTime: -1}
	}

	maxVal := labor.MaxValue
	current := labor.Value

	if labor.RemainSecs > 0 {
		elapsed := now - labor.LastUpdateTime
		if elapsed > 0 {
			gained := elapsed * int64(maxVal-labor.Value) / labor.RemainSecs
			current = labor.Value + int(gained)
		}
		if current > maxVal {
			current = maxVal
		}
		if current < 0 {
			current = 0
		}
	}

	remain := labor.RemainSecs - (now - labor.LastUpdateTime)
	if remain < 0 {
		remain = 0
	}

	return GaugeState{
		Current:     current,
		Max:         maxVal,
		RemainSecs:  remain,
		RecoverTime: labor.LastUpdateTime + labor.RemainSecs,
	}
}
