package service

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/teambition/rrule-go"
)

// occurrenceSep joins a recurring task's ID and an occurrence block.
const occurrenceSep = "@"

// parseRecurrence compiles an RRULE body anchored at start. An "RRULE:"
// prefix is accepted.
func parseRecurrence(rule string, start calendar.Date) (*rrule.RRule, error) {
	opt, err := rrule.StrToROption(strings.TrimSpace(rule))
	if err != nil {
		return nil, fmt.Errorf("%w: recurrence %q: %v", domain.ErrInvalidTask, rule, err)
	}
	opt.Dtstart = start.Time()
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("%w: recurrence %q: %v", domain.ErrInvalidTask, rule, err)
	}
	return r, nil
}

// ValidateRecurrence checks that rule is a well-formed RRULE body. An empty
// rule is valid.
func ValidateRecurrence(rule string) error {
	if strings.TrimSpace(rule) == "" {
		return nil
	}
	_, err := parseRecurrence(rule, calendar.Today())
	return err
}

func validateRecurrence(t *domain.Task) error {
	if !t.IsRecurring() {
		return nil
	}
	_, err := parseRecurrence(t.Recurrence, t.Block.Block.Start())
	return err
}

// expandOccurrences returns read-only copies of a recurring task for every
// block of its unit, other than its own, that the rule hits inside r.
func expandOccurrences(t *domain.Task, r calendar.DateRange) ([]*domain.Task, error) {
	if !t.IsRecurring() || r.IsEmpty() {
		return nil, nil
	}
	unit := t.Block.Block.Unit()
	rule, err := parseRecurrence(t.Recurrence, t.Block.Block.Start())
	if err != nil {
		return nil, err
	}

	from := unit.InstanceFrom(r.Start).Start()
	to := unit.InstanceFrom(r.End).End()
	var out []*domain.Task
	seen := map[calendar.Instance]bool{t.Block.Block: true}
	for _, hit := range rule.Between(from.Time(), to.Time(), true) {
		block := unit.InstanceFrom(calendar.DateOf(hit))
		if seen[block] {
			continue
		}
		seen[block] = true
		out = append(out, occurrenceOf(t, block))
	}
	return out, nil
}

func occurrenceOf(t *domain.Task, block calendar.Instance) *domain.Task {
	occ := *t
	occ.ID = t.ID + occurrenceSep + block.String()
	occ.Block = domain.TimelineBlock{TimelineID: t.Block.TimelineID, Block: block}
	occ.Status = domain.TaskTodo
	occ.CompletedAt = nil
	occ.Occurrence = true
	return &occ
}

// OccurrenceSource returns the ID of the recurring task an occurrence ID was
// generated from.
func OccurrenceSource(id string) (string, bool) {
	src, _, ok := strings.Cut(id, occurrenceSep)
	return src, ok
}
