package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	oauth2google "golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// dateOnly is the provider's date format for all-day events.
const dateOnly = "2006-01-02"

// GoogleClient implements Client against the Google Calendar API.
type GoogleClient struct {
	svc        *gcal.Service
	calendarID string
}

// NewGoogleClient creates a client authenticated with a service credentials file.
func NewGoogleClient(ctx context.Context, credentialsFile, calendarID string) (*GoogleClient, error) {
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}

	return &GoogleClient{svc: svc, calendarID: calendarID}, nil
}

// NewGoogleClientWithToken creates a client from an OAuth token, for
// deployments where the calendar belongs to an end user rather than a
// service account.
func NewGoogleClientWithToken(ctx context.Context, clientID, clientSecret string, token *oauth2.Token, calendarID string) (*GoogleClient, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     oauth2google.Endpoint,
		Scopes:       []string{gcal.CalendarScope},
	}

	svc, err := gcal.NewService(ctx, option.WithHTTPClient(config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}

	return &GoogleClient{svc: svc, calendarID: calendarID}, nil
}

// Find retrieves a single event. Returns (nil, nil) when the provider
// reports it gone.
func (c *GoogleClient) Find(ctx context.Context, externalID string) (*Event, error) {
	ev, err := c.svc.Events.Get(c.calendarID, externalID).Context(ctx).Do()
	if err != nil {
		if isGone(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching event %s: %w", externalID, err)
	}

	mapped := fromGoogleEvent(ev)
	return &mapped, nil
}

// List retrieves all events on the calendar, cancelled ones included so the
// reconciler can observe remote deletions.
func (c *GoogleClient) List(ctx context.Context) ([]Event, error) {
	var events []Event

	call := c.svc.Events.List(c.calendarID).ShowDeleted(true).Context(ctx)
	err := call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			events = append(events, fromGoogleEvent(item))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	return events, nil
}

// ListByIDs retrieves the given events one by one; the provider has no batch
// lookup. Unknown IDs are skipped rather than failing the whole call.
func (c *GoogleClient) ListByIDs(ctx context.Context, externalIDs []string, includeRecurrences bool) ([]Event, error) {
	var events []Event

	for _, id := range externalIDs {
		raw, err := c.svc.Events.Get(c.calendarID, id).Context(ctx).Do()
		if err != nil {
			if isGone(err) {
				continue
			}
			return nil, fmt.Errorf("fetching event %s: %w", id, err)
		}

		events = append(events, fromGoogleEvent(raw))

		if includeRecurrences && len(raw.Recurrence) > 0 {
			instances, err := c.ListRecurrences(ctx, id)
			if err != nil {
				return nil, err
			}
			events = append(events, instances...)
		}
	}

	return events, nil
}

// ListRecurrences retrieves the materialized instances of a recurring series.
func (c *GoogleClient) ListRecurrences(ctx context.Context, seriesExternalID string) ([]Event, error) {
	var events []Event

	call := c.svc.Events.Instances(c.calendarID, seriesExternalID).ShowDeleted(true).Context(ctx)
	err := call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			events = append(events, fromGoogleEvent(item))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing instances of %s: %w", seriesExternalID, err)
	}

	return events, nil
}

// Create creates a new remote event.
func (c *GoogleClient) Create(ctx context.Context, fields EventFields) (*Event, error) {
	ev, err := c.svc.Events.Insert(c.calendarID, toGoogleEvent(fields)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("creating event: %w", err)
	}

	mapped := fromGoogleEvent(ev)
	return &mapped, nil
}

// Update rewrites the writable fields of an existing remote event.
func (c *GoogleClient) Update(ctx context.Context, externalID string, fields EventFields) (*Event, error) {
	ev, err := c.svc.Events.Patch(c.calendarID, externalID, toGoogleEvent(fields)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("updating event %s: %w", externalID, err)
	}

	mapped := fromGoogleEvent(ev)
	return &mapped, nil
}

// UpdateDates moves an event without touching any of its other fields.
func (c *GoogleClient) UpdateDates(ctx context.Context, externalID string, dates DateRange) (*Event, error) {
	patch := &gcal.Event{
		Start: toGoogleDateTime(dates.Start, dates.AllDay),
		End:   toGoogleDateTime(dates.End, dates.AllDay),
	}

	ev, err := c.svc.Events.Patch(c.calendarID, externalID, patch).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("updating event dates %s: %w", externalID, err)
	}

	mapped := fromGoogleEvent(ev)
	return &mapped, nil
}

// Delete removes the remote event. Deleting an already-gone event is not an error.
func (c *GoogleClient) Delete(ctx context.Context, externalID string) error {
	if err := c.svc.Events.Delete(c.calendarID, externalID).Context(ctx).Do(); err != nil {
		if isGone(err) {
			return nil
		}
		return fmt.Errorf("deleting event %s: %w", externalID, err)
	}
	return nil
}

// isGone reports whether the provider says the event does not (or no longer)
// exists. Google answers 410 for events deleted from a calendar.
func isGone(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 404 || gerr.Code == 410
	}
	return false
}

// fromGoogleEvent maps a provider event onto the wire-agnostic Event shape.
func fromGoogleEvent(ev *gcal.Event) Event {
	start, allDay := flattenDateTime(ev.Start)
	end, _ := flattenDateTime(ev.End)

	return Event{
		ID:                   ev.Id,
		Title:                ev.Summary,
		Start:                start,
		End:                  end,
		AllDay:               allDay,
		Status:               ev.Status,
		Location:             ev.Location,
		IsRecurrenceInstance: ev.RecurringEventId != "",
		ParentExternalID:     ev.RecurringEventId,
	}
}

// flattenDateTime returns the provider's timestamp string and whether it is
// a date-only (all-day) value.
func flattenDateTime(dt *gcal.EventDateTime) (string, bool) {
	if dt == nil {
		return "", false
	}
	if dt.DateTime != "" {
		return dt.DateTime, false
	}
	return dt.Date, dt.Date != ""
}

func toGoogleEvent(fields EventFields) *gcal.Event {
	ev := &gcal.Event{
		Summary:  fields.Title,
		Location: fields.Location,
		Start:    toGoogleDateTime(fields.Start, fields.AllDay),
		End:      toGoogleDateTime(fields.End, fields.AllDay),
	}

	if fields.Recurrence != "" {
		ev.Recurrence = []string{"RRULE:" + fields.Recurrence}
	}

	return ev
}

func toGoogleDateTime(t time.Time, allDay bool) *gcal.EventDateTime {
	if allDay {
		return &gcal.EventDateTime{Date: t.Format(dateOnly)}
	}
	return &gcal.EventDateTime{DateTime: t.Format(time.RFC3339)}
}
