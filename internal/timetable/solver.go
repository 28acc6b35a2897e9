package timetable

import "context"

// SolveStats reports search effort for one solve() call, surfaced by the
// service layer as the backtrack_count log field.
type SolveStats struct {
	Backtracks int
}

// solve runs depth-first backtracking search over units, in the order
// they were built (OptionBlocks, then Doubles, then Singles), against
// every school's board at once. It returns true iff every unit found a
// placement; on false, every frame has already undone its own placements
// from its own snapshot, and GenerateContext then clears the touched
// boards (it takes no outer snapshot). ctx is checked
// between placement attempts so a caller-imposed deadline aborts the
// search early and reports it as a failed solve rather than blocking.
func solve(ctx context.Context, schools map[string]*School, units []PlacementUnit) (bool, SolveStats) {
	o := newOracle(schools)
	stats := SolveStats{}
	ok := solveFrom(ctx, o, schools, units, 0, &stats)
	return ok, stats
}

func solveFrom(ctx context.Context, o *oracle, schools map[string]*School, units []PlacementUnit, idx int, stats *SolveStats) bool {
	if idx >= len(units) {
		return true
	}
	if ctx.Err() != nil {
		return false
	}
	u := units[idx]
	school := schools[u.SchoolID]
	if school == nil {
		return false
	}

	for _, day := range school.Days {
		periods := school.teachingPeriodsForDay(day)
		for _, period := range periods {
			if !o.canPlace(u, day, period) {
				continue
			}
			snap := school.Board.snapshot()
			placeUnit(&school.Board, &snap, u, day, period, school)
			if solveFrom(ctx, o, schools, units, idx+1, stats) {
				return true
			}
			school.Board.restore(snap)
			stats.Backtracks++
		}
	}
	return false
}

// placeUnit writes u's sessions onto board at (day, period), tracking the
// operation on snap. For a Double, part 2 lands at the adjacent teaching
// period the Oracle already validated.
func placeUnit(board *Board, snap *Snapshot, u PlacementUnit, day Day, period int, school *School) {
	switch u.Kind {
	case UnitSingle:
		s := u.Sessions[0]
		s.Period = period
		board.placeTracked(snap, day, period, s)
	case UnitOptionBlock:
		sessions := make([]TimetableSession, len(u.Sessions))
		for i, s := range u.Sessions {
			s.Period = period
			sessions[i] = s
		}
		board.placeTracked(snap, day, period, sessions...)
	case UnitDouble:
		first := u.Sessions[0]
		first.Period = period
		board.placeTracked(snap, day, period, first)
		nextPeriod, _ := school.adjacentTeachingPeriod(day, period)
		second := u.Sessions[1]
		second.Period = nextPeriod
		board.placeTracked(snap, day, nextPeriod, second)
	}
}
