package formatter

import (
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/calendar"
	"github.com/stretchr/testify/assert"
)

var mar7 = calendar.NewDate(2024, time.March, 7)

func TestFormatInstance(t *testing.T) {
	tests := []struct {
		name string
		in   calendar.Instance
		want string
		tiny string
	}{
		{"day", calendar.DayOf(mar7), "Thu Mar 7, 2024", "Thu 7"},
		{"week", calendar.WeekOf(mar7), "Week 10, 2024 (Mar 4 - Mar 10)", "W10"},
		{"month", calendar.MonthOf(mar7), "March 2024", "Mar"},
		{"week across years", calendar.WeekOf(calendar.NewDate(2024, time.December, 31)), "Week 1, 2025 (Dec 30 - Jan 5)", "W1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatInstance(tt.in))
			assert.Equal(t, tt.tiny, CompactInstance(tt.in))
		})
	}
}

func TestFormatRange(t *testing.T) {
	assert.Equal(t, "Mar 7, 2024", FormatRange(calendar.SingleDay(mar7)))
	assert.Equal(t, "Mar 4 - Mar 10, 2024", FormatRange(calendar.WeekOf(mar7).Range()))
	assert.Equal(t, "Dec 30, 2024 - Jan 5, 2025",
		FormatRange(calendar.NewDateRange(calendar.NewDate(2024, time.December, 30), calendar.NewDate(2025, time.January, 5))))
	assert.Equal(t, "(empty)", FormatRange(calendar.NewDateRange(mar7, mar7.AddDays(-1))))
}

func TestRelativeDay(t *testing.T) {
	tests := []struct {
		offset int
		want   string
	}{
		{0, "Today"},
		{1, "Tomorrow"},
		{-1, "Yesterday"},
		{3, "In 3d"},
		{-3, "3d ago"},
		{21, "In 3w"},
		{-14, "2w ago"},
		{90, "In 3mo"},
		{-90, "3mo ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelativeDay(mar7.AddDays(tt.offset), mar7), "offset %d", tt.offset)
	}
}
