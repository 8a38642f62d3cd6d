package event

import (
	"errors"
	"reflect"
	"testing"

	"github.com/maintenance-manager/backend/internal/calendar"
)

func TestRenderWidget(t *testing.T) {
	input := []calendar.Event{
		{
			ID:       "1",
			Title:    "Inspection",
			Location: "Bldg A",
			Start:    "2024-01-05T09:00:00Z",
			End:      "2024-01-05T10:00:00Z",
		},
	}

	got, err := RenderWidget(input)
	if err != nil {
		t.Fatalf("RenderWidget failed: %v", err)
	}

	want := []WidgetEvent{
		{
			ID:          "1",
			Title:       "Inspection",
			Description: "Bldg A",
			Start:       "2024-01-05 09:00:00",
			End:         "2024-01-05 10:00:00",
			AllDay:      false,
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestRenderWidgetAllDay(t *testing.T) {
	got, err := RenderWidget([]calendar.Event{
		{ID: "2", Title: "Audit", Start: "2024-03-10", End: "2024-03-11", AllDay: true},
	})
	if err != nil {
		t.Fatalf("RenderWidget failed: %v", err)
	}

	if got[0].Start != "2024-03-10 00:00:00" || got[0].End != "2024-03-11 00:00:00" {
		t.Errorf("date-only timestamps rendered as %q / %q", got[0].Start, got[0].End)
	}
	if !got[0].AllDay {
		t.Error("allDay flag not carried through")
	}
}

func TestRenderWidgetPreservesOrder(t *testing.T) {
	input := []calendar.Event{
		{ID: "c", Title: "Third", Start: "2024-01-03T00:00:00Z", End: "2024-01-03T01:00:00Z"},
		{ID: "a", Title: "First", Start: "2024-01-01T00:00:00Z", End: "2024-01-01T01:00:00Z"},
		{ID: "b", Title: "Second", Start: "2024-01-02T00:00:00Z", End: "2024-01-02T01:00:00Z"},
	}

	got, err := RenderWidget(input)
	if err != nil {
		t.Fatalf("RenderWidget failed: %v", err)
	}

	for i, ev := range input {
		if got[i].ID != ev.ID {
			t.Errorf("position %d: got %q, want %q", i, got[i].ID, ev.ID)
		}
	}
}

func TestRenderWidgetMalformedTimestamp(t *testing.T) {
	input := []calendar.Event{
		{ID: "ok", Title: "Fine", Start: "2024-01-05T09:00:00Z", End: "2024-01-05T10:00:00Z"},
		{ID: "bad", Title: "Broken", Start: "next tuesday", End: "2024-01-05T10:00:00Z"},
	}

	got, err := RenderWidget(input)
	if !errors.Is(err, ErrMalformedTimestamp) {
		t.Fatalf("expected ErrMalformedTimestamp, got %v", err)
	}
	if got != nil {
		t.Errorf("batch with malformed timestamp must produce no output, got %+v", got)
	}
}

func TestRenderWidgetEmpty(t *testing.T) {
	got, err := RenderWidget(nil)
	if err != nil {
		t.Fatalf("RenderWidget failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty feed, got %+v", got)
	}
}
