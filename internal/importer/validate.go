package importer

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/alexanderramin/tempo/internal/domain"
)

// ValidateImportSchema checks the import schema for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	if len(schema.Timelines) == 0 && len(schema.Tasks) == 0 {
		return []error{fmt.Errorf("import file declares no timelines or tasks")}
	}

	refs := make(map[string]bool)
	errs = append(errs, validateTimelines(schema.Timelines, refs)...)
	errs = append(errs, validateTasks(schema.Tasks)...)

	return errs
}

func validateTimelines(timelines []TimelineImport, refs map[string]bool) []error {
	var errs []error

	for i, t := range timelines {
		prefix := fmt.Sprintf("timelines[%d]", i)
		switch {
		case t.Ref == "":
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		case refs[t.Ref]:
			errs = append(errs, fmt.Errorf("%s.ref %q is duplicated", prefix, t.Ref))
		default:
			refs[t.Ref] = true
		}
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if _, err := calendar.ParseTimeUnit(t.Unit); err != nil {
			errs = append(errs, fmt.Errorf("%s.unit: %w", prefix, err))
		}
	}

	return errs
}

func validateTasks(tasks []TaskImport) []error {
	var errs []error

	for i, t := range tasks {
		prefix := fmt.Sprintf("tasks[%d]", i)
		if strings.TrimSpace(t.Title) == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", prefix))
		}
		if strings.TrimSpace(t.Timeline) == "" {
			errs = append(errs, fmt.Errorf("%s.timeline is required", prefix))
		}
		if t.Date == "" {
			errs = append(errs, fmt.Errorf("%s.date is required", prefix))
		} else if _, err := calendar.ParseDate(t.Date); err != nil {
			errs = append(errs, fmt.Errorf("%s.date: invalid date format %q (expected YYYY-MM-DD)", prefix, t.Date))
		}
		if t.Status != "" && !domain.ValidTaskStatuses[t.Status] {
			errs = append(errs, fmt.Errorf("%s.status: invalid value %q", prefix, t.Status))
		}
	}

	return errs
}
