package event

import (
	"fmt"
	"time"

	"github.com/maintenance-manager/backend/internal/calendar"
)

// widgetTimeFormat is the timestamp format the front-end calendar widget
// expects. It is load-bearing: the widget fails to render anything else.
const widgetTimeFormat = "2006-01-02 15:04:05"

// WidgetEvent is one entry in the calendar widget feed.
type WidgetEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Start       string `json:"start"`
	End         string `json:"end"`
	AllDay      bool   `json:"allDay"`
}

// RenderWidget maps remote events onto the widget feed, preserving input
// order. Provider timestamps are reparsed and reformatted; a timestamp that
// parses as neither RFC 3339 nor a bare date fails the whole batch with
// ErrMalformedTimestamp.
func RenderWidget(events []calendar.Event) ([]WidgetEvent, error) {
	out := make([]WidgetEvent, 0, len(events))

	for _, ev := range events {
		start, err := parseTimestamp(ev.Start)
		if err != nil {
			return nil, fmt.Errorf("event %s start: %w", ev.ID, err)
		}
		end, err := parseTimestamp(ev.End)
		if err != nil {
			return nil, fmt.Errorf("event %s end: %w", ev.ID, err)
		}

		out = append(out, WidgetEvent{
			ID:          ev.ID,
			Title:       ev.Title,
			Description: ev.Location,
			Start:       start.Format(widgetTimeFormat),
			End:         end.Format(widgetTimeFormat),
			AllDay:      ev.AllDay,
		})
	}

	return out, nil
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
}
