package gamedata

import "github.com/antonk9218/skdesk/internal/client/api"

// Base per-unit production intervals in seconds, before worker bonuses.
const (
	manufactureUnitSecs = 1800
	tradingUnitSecs     = 7200
)

// StationState is the live projection of one production station: the
// extrapolated stock as of now plus the two countdowns the UI shows.
// NextDoneSecs / AllDoneSecs are -1 when the station is already full or
// its rate cannot be established.
type StationState struct {
	SlotID       string
	Current      int
	Capacity     int
	Running      bool
	NextDoneSecs int64
	AllDoneSecs  int64
	Bonus        float64
}

// StationSummary aggregates per-station projections for the overview line.
type StationSummary struct {
	Stations       []StationState
	TotalCurrent   int
	TotalCapacity  int
	ActiveStations int
	// LastComplete is the furthest completion instant across running
	// stations, -1 when everything is settled.
	LastComplete int64
}

// adjustedInterval applies the roster multiplier to a base interval.
// Returns 0 when no positive interval can be established.
func adjustedInterval(base int64, bonus float64) int64 {
	if base <= 0 {
		return 0
	}
	adj := int64(float64(base) / speedMultiplier(bonus))
	if adj <= 0 {
		adj = 1
	}
	return adj
}

// deriveStation runs the shared projection: extrapolate extra units
// completed since lastUpdate at one unit per interval, clamp to capacity,
// then compute the two countdowns. subtractOne drops one extrapolated unit
// (the trade-order variant of the heuristic).
func deriveStation(current, capacity int, lastUpdate, interval, now int64, subtractOne bool) (level int, nextDone, allDone int64) {
	level = current
	if level < 0 {
		level = 0
	}
	// A slot with no capacity has nothing to produce into: it is full by
	// definition and gets the no-countdown sentinel.
	if capacity <= 0 {
		return level, -1, -1
	}
	if level > capacity {
		level = capacity
	}
	if interval <= 0 {
		return level, -1, -1
	}

	elapsed := now - lastUpdate
	if elapsed > 0 {
		extra := elapsed / interval
		if subtractOne {
			extra--
		}
		if extra > 0 {
			level += int(extra)
		}
	}
	if level >= capacity {
		return capacity, -1, -1
	}

	var intoUnit int64
	if elapsed > 0 {
		intoUnit = elapsed % interval
	}
	nextDone = interval - intoUnit
	allDone = nextDone + int64(capacity-level-1)*interval
	return level, nextDone, allDone
}

// DeriveManufactures projects every manufacturing line forward using
// direct interpolation of elapsed time. A nil or empty slice yields an
// empty summary with LastComplete == -1.
func DeriveManufactures(stations []api.ManufactureStation, cache *bonusCache, now int64) StationSummary {
	sum := StationSummary{LastComplete: -1}
	for _, st := range stations {
		bonus := cache.rosterBonus("manufacture", st.Workers)
		interval := adjustedInterval(manufactureUnitSecs, bonus)

		level, next, all := deriveStation(st.Complete, st.Capacity, st.LastUpdateTime, interval, now, false)
		running := st.CompleteWorkTime > now

		sum.Stations = append(sum.Stations, StationState{
			SlotID:       st.SlotID,
			Current:      level,
			Capacity:     st.Capacity,
			Running:      running,
			NextDoneSecs: next,
			AllDoneSecs:  all,
			Bonus:        bonus,
		})
		sum.TotalCurrent += level
		sum.TotalCapacity += st.Capacity
		if running {
			sum.ActiveStations++
			if st.CompleteWorkTime > sum.LastComplete {
				sum.LastComplete = st.CompleteWorkTime
			}
		}
	}
	return sum
}

// DeriveTradings projects the order desks. Trade stock uses the
// subtract-one variant: the unit currently in progress is not counted
// until its interval fully elapses. Kept distinct from the manufacturing
// heuristic on purpose.
func DeriveTradings(stations []api.TradingStation, cache *bonusCache, now int64) StationSummary {
	sum := StationSummary{LastComplete: -1}
	for _, st := range stations {
		bonus := cache.rosterBonus("trading", st.Workers)
		interval := adjustedInterval(tradingUnitSecs, bonus)

		level, next, all := deriveStation(st.StockCount, st.StockLimit, st.LastUpdateTime, interval, now, true)
		running := st.CompleteWorkTime > now

		sum.Stations = append(sum.Stations, StationState{
			SlotID:       st.SlotID,
			Current:      level,
			Capacity:     st.StockLimit,
			Running:      running,
			NextDoneSecs: next,
			AllDoneSecs:  all,
			Bonus:        bonus,
		})
		sum.TotalCurrent += level
		sum.TotalCapacity += st.StockLimit
		if running {
			sum.ActiveStations++
			if st.CompleteWorkTime > sum.LastComplete {
				sum.LastComplete = st.CompleteWorkTime
			}
		}
	}
	return sum
}
