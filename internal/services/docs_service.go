package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"familytrip/internal/domain"
	"familytrip/internal/domain/models"
	"familytrip/internal/prompts"
	"familytrip/internal/utils"

	ics "github.com/arran4/golang-ical"
	"github.com/phpdave11/gofpdf"
)

// DocsService renders downloadable documents for a stored trip.
type DocsService struct {
	Trips     TripService
	RequestID string
	Loader    func(ctx context.Context, userID, tripID string) (models.Trip, error)
}

func (s DocsService) load(ctx context.Context, userID, tripID string) (models.Trip, error) {
	if s.Loader != nil {
		return s.Loader(ctx, userID, tripID)
	}
	return s.Trips.Get(ctx, userID, tripID)
}

// TripPDF returns a one-page summary of the trip and a download filename.
func (s DocsService) TripPDF(ctx context.Context, userID, tripID string) ([]byte, string, error) {
	trip, err := s.load(ctx, userID, tripID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "trip_pdf", "trip_id="+trip.ID)
	return buildTripPDF(trip)
}

// TripCalendar returns an iCalendar file with one all-day event spanning the trip.
func (s DocsService) TripCalendar(ctx context.Context, userID, tripID string) ([]byte, string, error) {
	trip, err := s.load(ctx, userID, tripID)
	if err != nil {
		return nil, "", err
	}
	if trip.StartDate == nil || trip.EndDate == nil {
		return nil, "", domain.ValidationError{Field: "dates", Msg: "reis heeft geen start- en einddatum"}
	}
	utils.LogEvent(s.RequestID, "docs", "trip_calendar", "trip_id="+trip.ID)
	return buildTripCalendar(trip)
}

func dateOr(d *string, fallback string) string {
	if d == nil {
		return fallback
	}
	return utils.Safe(*d, fallback)
}

func buildTripPDF(t models.Trip) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(t.Title), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(t.Title))
	pdf.Ln(12)

	days := "-"
	if t.StartDate != nil && t.EndDate != nil {
		if n := utils.DaysInclusive(*t.StartDate, *t.EndDate); n > 0 {
			days = fmt.Sprintf("%d", n)
		}
	}
	children := prompts.ChildrenLabel(t.FamilyComposition.Children)
	interests := "algemeen"
	if len(t.Preferences.Interests) > 0 {
		interests = strings.Join(t.Preferences.Interests, ", ")
	}
	total := "-"
	if t.TotalBudget != nil {
		total = utils.FormatEuro(*t.TotalBudget)
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Bestemming   : %s", utils.Safe(t.Destination, "-")),
		fmt.Sprintf("Vertrek      : %s", dateOr(t.StartDate, "-")),
		fmt.Sprintf("Terugkomst   : %s", dateOr(t.EndDate, "-")),
		fmt.Sprintf("Aantal dagen : %s", days),
		fmt.Sprintf("Volwassenen  : %d", t.FamilyComposition.Adults),
		fmt.Sprintf("Kinderen     : %s", children),
		fmt.Sprintf("Interesses   : %s", interests),
		fmt.Sprintf("Budget       : %s", t.Preferences.Budget.Label()),
		fmt.Sprintf("Totaalbudget : %s", total),
		fmt.Sprintf("Status       : %s", utils.Safe(t.Status, models.DefaultTripStatus)),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, tr(line))
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, tr("Fijne reis! Controleer openingstijden en reserveringen kort voor vertrek."), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("REIS_%s.pdf", utils.SafeFilenamePart(t.Destination+"_"+dateOr(t.StartDate, "")))
	return buf.Bytes(), filename, nil
}

func buildTripCalendar(t models.Trip) ([]byte, string, error) {
	start, err := utils.ParseDate(*t.StartDate)
	if err != nil {
		return nil, "", domain.ValidationError{Field: "start_date", Msg: "ongeldige datum", Err: err}
	}
	end, err := utils.ParseDate(*t.EndDate)
	if err != nil {
		return nil, "", domain.ValidationError{Field: "end_date", Msg: "ongeldige datum", Err: err}
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//familytrip//reisplanner//NL")

	ev := cal.AddEvent(t.ID + "@familytrip")
	stamp := t.UpdatedAt
	if stamp.IsZero() {
		stamp = time.Now().UTC()
	}
	ev.SetDtStampTime(stamp)
	ev.SetSummary(t.Title)
	ev.SetLocation(t.Destination)
	ev.SetDescription(fmt.Sprintf("Gezinsreis naar %s (%s, budget %s)",
		t.Destination, prompts.ChildrenLabel(t.FamilyComposition.Children), t.Preferences.Budget.Label()))
	ev.SetAllDayStartAt(start)
	// DTEND of an all-day event is exclusive.
	ev.SetAllDayEndAt(end.AddDate(0, 0, 1))

	filename := fmt.Sprintf("REIS_%s.ics", utils.SafeFilenamePart(t.Destination+"_"+*t.StartDate))
	return []byte(cal.Serialize()), filename, nil
}
