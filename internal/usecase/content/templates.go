package content

import (
	"fmt"

	"tripnotify/internal/domain/entity"
)

// templateContext carries the pre-formatted facts a template interpolates.
// Formatting happens once per event, before template dispatch, so every
// channel variant sees identical facts.
type templateContext struct {
	// TripLabel is the formatted trip display name ("your trip" fallback).
	TripLabel string

	// Suffix is the parenthesized location/date context, possibly empty.
	Suffix string

	// Actor is the display name of the acting user ("Someone" fallback).
	Actor string

	// Count is the event quantity, zero when not applicable.
	Count int

	// Extra holds per-template scalar facts from the event.
	Extra map[string]string
}

// templateFunc renders the push-equivalent title/body pair for one
// notification type. Email and SMS content are derived from this output, not
// built independently.
type templateFunc func(tc templateContext) entity.PushContent

// templates maps every known notification type to its copy template. Adding a
// notification type means adding one entry here; unknown types fall back to
// genericTemplate rather than failing, since refusing to notify is worse than
// generic copy.
var templates = map[entity.NotificationType]templateFunc{
	entity.TypeBroadcastPosted: func(tc templateContext) entity.PushContent {
		return entity.PushContent{
			Title: fmt.Sprintf("New broadcast in %s", tc.TripLabel),
			Body:  fmt.Sprintf("%s posted a broadcast in %s%s.", tc.Actor, tc.TripLabel, tc.Suffix),
		}
	},
	entity.TypeCalendarEventAdded: func(tc templateContext) entity.PushContent {
		return entity.PushContent{
			Title: fmt.Sprintf("New event in %s", tc.TripLabel),
			Body:  fmt.Sprintf("%s added an event to the calendar for %s%s.", tc.Actor, tc.TripLabel, tc.Suffix),
		}
	},
	entity.TypeCalendarEventUpdated: func(tc templateContext) entity.PushContent {
		return entity.PushContent{
			Title: fmt.Sprintf("Event updated in %s", tc.TripLabel),
			Body:  fmt.Sprintf("%s updated a calendar event in %s%s.", tc.Actor, tc.TripLabel, tc.Suffix),
		}
	},
	entity.TypeCalendarBulkImport: func(tc templateContext) entity.PushContent {
		events := "events"
		if tc.Count == 1 {
			events = "an event"
		} else if tc.Count > 1 {
			events = fmt.Sprintf("%d events", tc.Count)
		}
		return entity.PushContent{
			Title: fmt.Sprintf("Calendar updated in %s", tc.TripLabel),
			Body:  fmt.Sprintf("%s imported %s into the calendar for %s%s.", tc.Actor, events, tc.TripLabel, tc.Suffix),
		}
	},
	entity.TypePaymentRequest: func(tc templateContext) entity.PushContent {
		amount := tc.Extra["amount"]
		what := "a payment"
		if amount != "" {
			what = amount
		}
		return entity.PushContent{
			Title: fmt.Sprintf("Payment requested in %s", tc.TripLabel),
			Body:  fmt.Sprintf("%s requested %s from you in %s%s.", tc.Actor, what, tc.TripLabel, tc.Suffix),
		}
	},
	entity.TypePaymentSettled: func(tc templateContext) entity.PushContent {
		return entity.PushContent{
			Title: fmt.Sprintf("Payment settled in %s", tc.TripLabel),
			Body:  fmt.Sprintf("%s settled a payment in %s%s.", tc.Actor, tc.TripLabel, tc.Suffix),
		}
	},
	entity.TypeTaskAssigned: func(tc templateContext) entity.PushContent {
		return entity.PushContent{
			Title: "You have a new task",
			Body:  fmt.Sprintf("%s assigned you a task in %s%s.", tc.Actor, tc.TripLabel, tc.Suffix),
		}
	},
	entity.TypeTaskCompleted: func(tc templateContext) entity.PushContent {
		return entity.PushContent{
			Title: fmt.Sprintf("Task completed in %s", tc.TripLabel),
			Body:  fmt.Sprintf("%s completed a task in %s%s.", tc.Actor, tc.TripLabel, tc.Suffix),
		}
	},
	entity.TypePollCreated: func(tc templateContext) entity.PushContent {
		return entity.PushContent{
			Title: fmt.Sprintf("New poll in %s", tc.TripLabel),
			Body:  fmt.Sprintf("%s created a poll in %s%s. Cast your vote!", tc.Actor, tc.TripLabel, tc.Suffix),
		}
	},
	entity.TypeJoinRequest: func(tc templateContext) entity.PushContent {
		return entity.PushContent{
			Title: fmt.Sprintf("Join request for %s", tc.TripLabel),
			Body:  fmt.Sprintf("%s requested to join %s%s.", tc.Actor, tc.TripLabel, tc.Suffix),
		}
	},
	entity.TypeJoinApproved: func(tc templateContext) entity.PushContent {
		return entity.PushContent{
			Title: "You're in!",
			Body:  fmt.Sprintf("Your request to join %s was approved%s.", tc.TripLabel, tc.Suffix),
		}
	},
	entity.TypeBasecampUpdated: func(tc templateContext) entity.PushContent {
		return entity.PushContent{
			Title: fmt.Sprintf("Basecamp updated for %s", tc.TripLabel),
			Body:  fmt.Sprintf("%s updated the basecamp for %s%s.", tc.Actor, tc.TripLabel, tc.Suffix),
		}
	},
	entity.TypeTripInvite: func(tc templateContext) entity.PushContent {
		return entity.PushContent{
			Title: fmt.Sprintf("You're invited to %s", tc.TripLabel),
			Body:  fmt.Sprintf("%s invited you to join %s%s.", tc.Actor, tc.TripLabel, tc.Suffix),
		}
	},
	entity.TypeTripReminder: func(tc templateContext) entity.PushContent {
		return entity.PushContent{
			Title: fmt.Sprintf("%s is coming up", tc.TripLabel),
			Body:  fmt.Sprintf("Get ready! %s is coming up soon%s.", tc.TripLabel, tc.Suffix),
		}
	},
	entity.TypeRSVPUpdate: func(tc templateContext) entity.PushContent {
		if tc.Count > 1 {
			return entity.PushContent{
				Title: fmt.Sprintf("RSVP updates in %s", tc.TripLabel),
				Body:  fmt.Sprintf("%d RSVPs were updated in %s%s.", tc.Count, tc.TripLabel, tc.Suffix),
			}
		}
		return entity.PushContent{
			Title: fmt.Sprintf("RSVP update in %s", tc.TripLabel),
			Body:  fmt.Sprintf("%s updated their RSVP for %s%s.", tc.Actor, tc.TripLabel, tc.Suffix),
		}
	},
}

// genericTemplate is the fail-open fallback for unmapped notification types.
func genericTemplate(tc templateContext) entity.PushContent {
	return entity.PushContent{
		Title: fmt.Sprintf("Update in %s", tc.TripLabel),
		Body:  fmt.Sprintf("There's an update in %s%s.", tc.TripLabel, tc.Suffix),
	}
}
