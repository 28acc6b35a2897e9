package timetable

import (
	"strings"
)

// UnitKind tags a PlacementUnit's variant. Go has no sum types, so the
// Unit Builder, Oracle and Solver all switch on this field rather than on
// field presence.
type UnitKind int

const (
	UnitSingle UnitKind = iota
	UnitDouble
	UnitOptionBlock
)

// PlacementUnit is the atomic thing the solver places: a Single, a Double
// pair (Sessions[0] is part 1, Sessions[1] is part 2), or an OptionBlock
// (one session per group member, all sharing one slot). Each session
// carries its own owning assignment's AllowedDays (§4.5 rule 4 is checked
// per session, not once per unit), since an OptionBlock's members may
// each have a different whitelist.
type PlacementUnit struct {
	Kind     UnitKind
	SchoolID string
	Sessions []TimetableSession
}

// SeniorSecondaryPredicate decides whether a school/grade pair should have
// its option groups split per grade rather than pooled across grades. The
// spec's own substring heuristic ("secondary" in the school name and the
// grade starting with "Grade 1" or "A-Level") is preserved as the default
// but made overridable, per the Open Question in the design notes.
type SeniorSecondaryPredicate func(schoolName, grade string) bool

// DefaultSeniorSecondaryPredicate implements the heuristic literally
// described by the source: a case-insensitive "secondary" match on the
// school name, combined with a "Grade 1" or "A-Level" grade prefix.
func DefaultSeniorSecondaryPredicate(schoolName, grade string) bool {
	if !strings.Contains(strings.ToLower(schoolName), "secondary") {
		return false
	}
	return strings.HasPrefix(grade, "Grade 1") || strings.HasPrefix(grade, "A-Level")
}

// classExpansion produces the class names a (grades, arms) pair expands
// to: one class per (grade, arm), or one class per grade (blank arm) when
// Arms is empty.
func classExpansion(grades, arms []string) []string {
	if len(arms) == 0 {
		out := make([]string, 0, len(grades))
		for _, g := range grades {
			out = append(out, strings.TrimSpace(g))
		}
		return out
	}
	out := make([]string, 0, len(grades)*len(arms))
	for _, g := range grades {
		for _, a := range arms {
			out = append(out, strings.TrimSpace(strings.TrimSpace(g)+" "+strings.TrimSpace(a)))
		}
	}
	return out
}

// optionGroupKey groups assignments destined for the option-block
// pipeline by (school, tag[, grade]).
type optionGroupKey struct {
	SchoolID string
	Tag      string
	Grade    string
}

// BuildUnits expands every teacher's assignments into an ordered list of
// placement units: OptionBlocks first (most constrained), then Doubles,
// then Singles, matching the MRV-friendly ordering of §4.2.
//
// schoolNames resolves a school id to its name, needed only to evaluate
// seniorPred; pass a predicate of nil to disable the senior-secondary
// per-grade split entirely.
func BuildUnits(teachers []Teacher, schoolNames map[string]string, seniorPred SeniorSecondaryPredicate) []PlacementUnit {
	type optionMember struct {
		teacherName string
		teacherID   string
		assignment  Assignment
		classes     []string
	}
	groups := make(map[optionGroupKey][]optionMember)
	var groupOrder []optionGroupKey

	var doubles, singles []PlacementUnit

	for _, t := range teachers {
		for _, a := range t.Assignments {
			if a.Subject == "Assembly" {
				continue
			}
			if len(a.Grades) == 0 {
				continue
			}
			classes := classExpansion(a.Grades, a.Arms)
			if a.OptionGroup != "" {
				grade := ""
				if seniorPred != nil && len(a.Grades) > 0 {
					schoolName := schoolNames[a.SchoolID]
					for _, g := range a.Grades {
						if seniorPred(schoolName, g) {
							grade = g
							break
						}
					}
				}
				key := optionGroupKey{SchoolID: a.SchoolID, Tag: a.OptionGroup, Grade: grade}
				if _, seen := groups[key]; !seen {
					groupOrder = append(groupOrder, key)
				}
				groups[key] = append(groups[key], optionMember{
					teacherName: t.Name,
					teacherID:   t.ID,
					assignment:  a,
					classes:     classes,
				})
				continue
			}

			// §3: an assignment demands its period count per class, not
			// once for the whole cross-product, so the Double/Single
			// split runs independently for every class it expands to.
			for _, class := range classes {
				remaining := a.PeriodsWeek
				if !a.NoAutoDouble {
					for remaining >= 2 {
						s1 := TimetableSession{
							ID: newID(), Subject: a.Subject, TeacherName: t.Name, TeacherID: t.ID,
							ClassName: class, Classes: []string{class}, IsDouble: true, Part: 1,
							SchoolID: a.SchoolID, AllowedDays: a.AllowedDays,
						}
						s2 := s1
						s2.Part = 2
						doubles = append(doubles, PlacementUnit{
							Kind: UnitDouble, SchoolID: a.SchoolID,
							Sessions: []TimetableSession{s1, s2},
						})
						remaining -= 2
					}
				}
				for remaining >= 1 {
					s := TimetableSession{
						ID: newID(), Subject: a.Subject, TeacherName: t.Name, TeacherID: t.ID,
						ClassName: class, Classes: []string{class}, SchoolID: a.SchoolID,
						AllowedDays: a.AllowedDays,
					}
					singles = append(singles, PlacementUnit{
						Kind: UnitSingle, SchoolID: a.SchoolID,
						Sessions: []TimetableSession{s},
					})
					remaining--
				}
			}
		}
	}

	var optionBlocks []PlacementUnit
	for _, key := range groupOrder {
		members := groups[key]
		maxPeriods := 0
		for _, m := range members {
			if m.assignment.PeriodsWeek > maxPeriods {
				maxPeriods = m.assignment.PeriodsWeek
			}
		}
		for k := 0; k < maxPeriods; k++ {
			var sessions []TimetableSession
			seenTeacher := make(map[string]bool)
			blockID := newID()
			for _, m := range members {
				if m.assignment.PeriodsWeek <= k {
					continue
				}
				if seenTeacher[m.teacherID] {
					continue
				}
				seenTeacher[m.teacherID] = true
				s := TimetableSession{
					ID:            blockID,
					Subject:       "Option " + key.Tag,
					ActualSubject: m.assignment.Subject,
					TeacherName:   m.teacherName,
					TeacherID:     m.teacherID,
					Classes:       m.classes,
					OptionGroup:   key.Tag,
					OptionBlockID: blockID,
					SchoolID:      key.SchoolID,
					// Each member keeps its own assignment's whitelist:
					// the Oracle checks it per session (rule 4 of §4.5),
					// never pre-intersected across the whole block.
					AllowedDays: m.assignment.AllowedDays,
				}
				if len(m.classes) == 1 {
					s.ClassName = m.classes[0]
				}
				sessions = append(sessions, s)
			}
			if len(sessions) == 0 {
				continue
			}
			optionBlocks = append(optionBlocks, PlacementUnit{
				Kind: UnitOptionBlock, SchoolID: key.SchoolID, Sessions: sessions,
			})
		}
	}

	units := make([]PlacementUnit, 0, len(optionBlocks)+len(doubles)+len(singles))
	units = append(units, optionBlocks...)
	units = append(units, doubles...)
	units = append(units, singles...)
	return units
}
