package timetable

import "encoding/json"

// Board is one school's partial schedule: a mapping of day to a sparse,
// period-ordered list of occupied slots. Only occupied periods appear.
type Board struct {
	days map[Day][]slot
}

// NewBoard returns an empty board.
func NewBoard() Board {
	return Board{days: make(map[Day][]slot)}
}

// boardDoc is Board's persisted shape: `days` is unexported so hosts that
// serialise a Store (see Store.ToDocument) go through this instead of
// reflecting over Board directly.
type boardDoc struct {
	Days map[Day][]slot `json:"days"`
}

// MarshalJSON implements json.Marshaler so a Board round-trips through
// the document store without exposing its internal map.
func (b Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(boardDoc{Days: b.days})
}

// UnmarshalJSON implements json.Unmarshaler, the inverse of MarshalJSON.
func (b *Board) UnmarshalJSON(data []byte) error {
	var doc boardDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Days == nil {
		doc.Days = make(map[Day][]slot)
	}
	b.days = doc.Days
	return nil
}

// SessionsAt returns the sessions placed at (day, period), or nil if the
// slot is absent.
func (b *Board) SessionsAt(day Day, period int) []TimetableSession {
	if b.days == nil {
		return nil
	}
	slots := b.days[day]
	for i := range slots {
		if slots[i].Period == period {
			return slots[i].Sessions
		}
	}
	return nil
}

// Place appends the given sessions to the slot at (day, period), creating
// the slot (in period-ascending position) if it doesn't exist yet.
func (b *Board) Place(day Day, period int, sessions ...TimetableSession) {
	if b.days == nil {
		b.days = make(map[Day][]slot)
	}
	slots := b.days[day]
	for i := range slots {
		if slots[i].Period == period {
			slots[i].Sessions = append(slots[i].Sessions, sessions...)
			b.days[day] = slots
			return
		}
	}
	idx := len(slots)
	for i, s := range slots {
		if s.Period > period {
			idx = i
			break
		}
	}
	slots = append(slots, slot{})
	copy(slots[idx+1:], slots[idx:])
	slots[idx] = slot{Period: period, Sessions: append([]TimetableSession{}, sessions...)}
	b.days[day] = slots
}

// Remove removes the first session at (day, period) matching id (and, for
// Doubles, the given part). If the slot becomes empty it is dropped
// entirely so the board stays sparse. Reports whether a match was found.
func (b *Board) Remove(day Day, period int, sessionID string, part int) bool {
	if b.days == nil {
		return false
	}
	slots := b.days[day]
	for i := range slots {
		if slots[i].Period != period {
			continue
		}
		sessions := slots[i].Sessions
		for j := range sessions {
			if sessions[j].ID != sessionID {
				continue
			}
			if sessions[j].IsDouble && part != 0 && sessions[j].Part != part {
				continue
			}
			sessions = append(sessions[:j], sessions[j+1:]...)
			if len(sessions) == 0 {
				slots = append(slots[:i], slots[i+1:]...)
			} else {
				slots[i].Sessions = sessions
			}
			b.days[day] = slots
			return true
		}
	}
	return false
}

// undoOp is one entry of a snapshot's undo log: it records that
// `Inserted` sessions were appended to the slot at (Day, Period), so
// restoring means trimming that many sessions off the tail, dropping the
// slot if it becomes empty.
type undoOp struct {
	Day      Day
	Period   int
	Inserted int
}

// Snapshot is a compact, per-school undo log rather than a deep copy: it
// only remembers how many sessions were appended where, which the solver
// truncates on backtrack. This replaces the source's deep-copy-per-frame
// approach (see the locked-session/backtracking design notes) with an
// allocation-free equivalent.
type Snapshot struct {
	ops []undoOp
}

// snapshot begins a new undo log for this board. Every Place call issued
// through placeTracked after this point is recorded in the returned
// Snapshot until Restore is called.
func (b *Board) snapshot() Snapshot {
	return Snapshot{}
}

// placeTracked places sessions and records the operation onto snap so it
// can be undone later.
func (b *Board) placeTracked(snap *Snapshot, day Day, period int, sessions ...TimetableSession) {
	b.Place(day, period, sessions...)
	snap.ops = append(snap.ops, undoOp{Day: day, Period: period, Inserted: len(sessions)})
}

// restore undoes every operation recorded in snap, most recent first,
// returning the board to the state it had when snap was taken.
func (b *Board) restore(snap Snapshot) {
	for i := len(snap.ops) - 1; i >= 0; i-- {
		op := snap.ops[i]
		slots := b.days[op.Day]
		for si := range slots {
			if slots[si].Period != op.Period {
				continue
			}
			n := len(slots[si].Sessions) - op.Inserted
			if n <= 0 {
				slots = append(slots[:si], slots[si+1:]...)
			} else {
				slots[si].Sessions = slots[si].Sessions[:n]
			}
			b.days[op.Day] = slots
			break
		}
	}
}

// Clear wipes every placed session from the board.
func (b *Board) Clear() {
	b.days = make(map[Day][]slot)
}

// AllSessions returns every session on the board paired with its day and
// period, in day-list iteration order (caller-provided) then ascending
// period order. Used by the conflict detector and by callers reading back
// a solved board.
func (b *Board) AllSessions(dayOrder []Day) []struct {
	Day     Day
	Period  int
	Session TimetableSession
} {
	var out []struct {
		Day     Day
		Period  int
		Session TimetableSession
	}
	for _, d := range dayOrder {
		for _, s := range b.days[d] {
			for _, sess := range s.Sessions {
				out = append(out, struct {
					Day     Day
					Period  int
					Session TimetableSession
				}{Day: d, Period: s.Period, Session: sess})
			}
		}
	}
	return out
}
