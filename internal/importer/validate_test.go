package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMinimalSchema() *ImportSchema {
	return &ImportSchema{
		Tasks: []TaskImport{
			{Title: "Write report", Timeline: "day", Date: "2024-03-07"},
		},
	}
}

func TestValidateImportSchema_ValidMinimal(t *testing.T) {
	errs := ValidateImportSchema(validMinimalSchema())
	assert.Empty(t, errs)
}

func TestValidateImportSchema_ValidFull(t *testing.T) {
	schema := &ImportSchema{
		Timelines: []TimelineImport{
			{Ref: "sprints", Name: "Sprints", Unit: "week"},
			{Ref: "quarters", Name: "Quarterly goals", Unit: "month"},
		},
		Tasks: []TaskImport{
			{Title: "Plan", Timeline: "sprints", Date: "2024-03-04", Status: "done"},
			{Title: "Review", Timeline: "Week", Date: "2024-03-08", Notes: "with team", Repeat: "FREQ=WEEKLY"},
			{Title: "Goals", Timeline: "quarters", Date: "2024-04-01", Status: "skipped"},
		},
	}
	errs := ValidateImportSchema(schema)
	assert.Empty(t, errs)
}

func TestValidateImportSchema_Empty(t *testing.T) {
	errs := ValidateImportSchema(&ImportSchema{})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no timelines or tasks")
}

func TestValidateImportSchema_TaskFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *ImportSchema)
		wantMsg string
	}{
		{"missing title", func(s *ImportSchema) { s.Tasks[0].Title = "  " }, "tasks[0].title is required"},
		{"missing timeline", func(s *ImportSchema) { s.Tasks[0].Timeline = "" }, "tasks[0].timeline is required"},
		{"missing date", func(s *ImportSchema) { s.Tasks[0].Date = "" }, "tasks[0].date is required"},
		{"bad date", func(s *ImportSchema) { s.Tasks[0].Date = "07.03.2024" }, `tasks[0].date: invalid date format "07.03.2024"`},
		{"bad status", func(s *ImportSchema) { s.Tasks[0].Status = "in_progress" }, `tasks[0].status: invalid value "in_progress"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validMinimalSchema()
			tt.mutate(s)
			errs := ValidateImportSchema(s)
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0].Error(), tt.wantMsg)
		})
	}
}

func TestValidateImportSchema_TimelineFields(t *testing.T) {
	schema := validMinimalSchema()
	schema.Timelines = []TimelineImport{
		{Ref: "a", Name: "A", Unit: "week"},
		{Ref: "a", Name: "", Unit: "fortnight"},
		{Ref: "", Name: "C", Unit: "day"},
	}

	errs := ValidateImportSchema(schema)
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	assert.Len(t, errs, 4)
	assert.Contains(t, msgs, `timelines[1].ref "a" is duplicated`)
	assert.Contains(t, msgs, "timelines[1].name is required")
	assert.Contains(t, msgs, "timelines[2].ref is required")
}

func TestParseImportSchema(t *testing.T) {
	schema, err := ParseImportSchema([]byte(`{
		"timelines": [{"ref": "s", "name": "Sprints", "unit": "week"}],
		"tasks": [{"title": "Plan", "timeline": "s", "date": "2024-03-04", "repeat": "FREQ=WEEKLY"}]
	}`))
	require.NoError(t, err)
	require.Len(t, schema.Timelines, 1)
	require.Len(t, schema.Tasks, 1)
	assert.Equal(t, "FREQ=WEEKLY", schema.Tasks[0].Repeat)

	_, err = ParseImportSchema([]byte(`{"tasks": [`))
	assert.ErrorContains(t, err, "parsing import file")
}
