package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/spf13/pflag"
)

// dateValue is a pflag.Value accepting YYYY-MM-DD plus "today",
// "tomorrow" and "yesterday".
type dateValue struct {
	date  *calendar.Date
	set   bool
	today func() calendar.Date
}

var _ pflag.Value = (*dateValue)(nil)

func newDateValue(p *calendar.Date, today func() calendar.Date) *dateValue {
	return &dateValue{date: p, today: today}
}

func (v *dateValue) String() string {
	if v.date == nil || !v.set {
		return ""
	}
	return v.date.String()
}

func (v *dateValue) Set(s string) error {
	d, err := parseDateArg(s, v.today())
	if err != nil {
		return err
	}
	*v.date = d
	v.set = true
	return nil
}

func (v *dateValue) Type() string { return "date" }

func parseDateArg(s string, today calendar.Date) (calendar.Date, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	case "yesterday":
		return today.AddDays(-1), nil
	}
	d, err := calendar.ParseDate(s)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD or today)", s)
	}
	return d, nil
}

// dateFlag registers a date flag on fs that defaults to today.
func dateFlag(fs *pflag.FlagSet, p *calendar.Date, name, usage string, today func() calendar.Date) *dateValue {
	v := newDateValue(p, today)
	fs.Var(v, name, usage)
	return v
}
