package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"familytrip/internal/domain"
	"familytrip/internal/domain/models"
	"familytrip/internal/repositories"
	"familytrip/internal/telemetry"
	"familytrip/internal/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TripService is the ownership-checked gateway to stored trips.
type TripService struct {
	Repo      repositories.TripsRepository
	RequestID string

	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func() string
}

func (s TripService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s TripService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	// v7 ids sort by creation time, so they break created_at ties in List.
	return uuid.Must(uuid.NewV7()).String()
}

func (s TripService) span(ctx context.Context, op string) (context.Context, trace.Span) {
	return telemetry.Tracer().Start(ctx, "trips."+op)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return domain.UnauthorizedError{Reason: "geen geldige sessie"}
	}
	return nil
}

// Create validates the payload, applies defaults and stores a new trip owned by userID.
func (s TripService) Create(ctx context.Context, userID string, in models.TripInput) (trip models.Trip, err error) {
	ctx, span := s.span(ctx, "create")
	defer func() { endSpan(span, err) }()

	if err := requireUser(userID); err != nil {
		return models.Trip{}, err
	}
	trip, err = buildTrip(in)
	if err != nil {
		return models.Trip{}, err
	}

	now := s.now()
	trip.ID = s.newID()
	trip.UserID = userID
	trip.CreatedAt = now
	trip.UpdatedAt = now

	if err := s.Repo.Insert(ctx, trip); err != nil {
		utils.LogError(s.RequestID, "trips", "create", err)
		return models.Trip{}, domain.InternalError{Msg: "reis opslaan mislukt", Err: err}
	}

	span.SetAttributes(attribute.String("trip.id", trip.ID))
	telemetry.Count(ctx, "trips_created_total")
	utils.LogEvent(s.RequestID, "trips", "create", fmt.Sprintf("trip_id=%s user_id=%s", trip.ID, userID))
	return trip, nil
}

// List returns the caller's trips, newest first. Never nil.
func (s TripService) List(ctx context.Context, userID string) (trips []models.Trip, err error) {
	ctx, span := s.span(ctx, "list")
	defer func() { endSpan(span, err) }()

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	trips, err = s.Repo.ListByUser(ctx, userID)
	if err != nil {
		utils.LogError(s.RequestID, "trips", "list", err)
		return nil, domain.InternalError{Msg: "reizen ophalen mislukt", Err: err}
	}
	return trips, nil
}

// Get returns one trip. A trip owned by someone else is reported as not found.
func (s TripService) Get(ctx context.Context, userID, id string) (trip models.Trip, err error) {
	ctx, span := s.span(ctx, "get")
	defer func() { endSpan(span, err) }()

	if err := requireUser(userID); err != nil {
		return models.Trip{}, err
	}
	return s.load(ctx, userID, id)
}

func (s TripService) load(ctx context.Context, userID, id string) (models.Trip, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Trip{}, domain.ValidationError{Field: "id", Msg: "ontbreekt"}
	}
	trip, err := s.Repo.GetByID(ctx, userID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Trip{}, domain.NotFoundError{Resource: "trip", Err: err}
	}
	if err != nil {
		utils.LogError(s.RequestID, "trips", "get", err)
		return models.Trip{}, domain.InternalError{Msg: "reis ophalen mislukt", Err: err}
	}
	return trip, nil
}

// Update replaces the mutable fields of an owned trip. created_at and user_id are kept.
func (s TripService) Update(ctx context.Context, userID, id string, in models.TripInput) (trip models.Trip, err error) {
	ctx, span := s.span(ctx, "update")
	defer func() { endSpan(span, err) }()

	if err := requireUser(userID); err != nil {
		return models.Trip{}, err
	}
	current, err := s.load(ctx, userID, id)
	if err != nil {
		return models.Trip{}, err
	}
	trip, err = buildTrip(in)
	if err != nil {
		return models.Trip{}, err
	}

	trip.ID = current.ID
	trip.UserID = current.UserID
	trip.CreatedAt = current.CreatedAt
	trip.UpdatedAt = s.now()

	if err := s.Repo.Update(ctx, trip); err != nil {
		utils.LogError(s.RequestID, "trips", "update", err)
		return models.Trip{}, domain.InternalError{Msg: "reis bijwerken mislukt", Err: err}
	}
	utils.LogEvent(s.RequestID, "trips", "update", "trip_id="+trip.ID)
	return trip, nil
}

func (s TripService) Delete(ctx context.Context, userID, id string) (err error) {
	ctx, span := s.span(ctx, "delete")
	defer func() { endSpan(span, err) }()

	if err := requireUser(userID); err != nil {
		return err
	}
	n, err := s.Repo.Delete(ctx, userID, strings.TrimSpace(id))
	if err != nil {
		utils.LogError(s.RequestID, "trips", "delete", err)
		return domain.InternalError{Msg: "reis verwijderen mislukt", Err: err}
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "trip"}
	}
	utils.LogEvent(s.RequestID, "trips", "delete", "trip_id="+id)
	return nil
}

// buildTrip validates a payload and fills in defaults. Identity and timestamps are left empty.
func buildTrip(in models.TripInput) (models.Trip, error) {
	title := utils.NormalizeSpace(in.Title)
	if title == "" {
		return models.Trip{}, domain.ValidationError{Field: "title", Msg: "is verplicht"}
	}
	destination := utils.NormalizeSpace(in.Destination)
	if destination == "" {
		return models.Trip{}, domain.ValidationError{Field: "destination", Msg: "is verplicht"}
	}

	start, err := optionalDate("start_date", in.StartDate)
	if err != nil {
		return models.Trip{}, err
	}
	end, err := optionalDate("end_date", in.EndDate)
	if err != nil {
		return models.Trip{}, err
	}
	if start != nil && end != nil && *end < *start {
		return models.Trip{}, domain.ValidationError{Field: "end_date", Msg: "ligt voor de startdatum"}
	}

	family := models.FamilyComposition{Adults: models.DefaultAdults, Children: models.IntList{}}
	if in.FamilyComposition != nil {
		if in.FamilyComposition.Adults < 0 {
			return models.Trip{}, domain.ValidationError{Field: "family_composition.adults", Msg: "mag niet negatief zijn"}
		}
		if in.FamilyComposition.Adults > 0 {
			family.Adults = in.FamilyComposition.Adults
		}
		for _, age := range in.FamilyComposition.Children {
			if age < 0 || age > models.MaxChildAge {
				return models.Trip{}, domain.ValidationError{
					Field: "family_composition.children",
					Msg:   fmt.Sprintf("leeftijd %d valt buiten 0-%d", age, models.MaxChildAge),
				}
			}
			family.Children = append(family.Children, age)
		}
	}

	var prefs models.Preferences
	if in.Preferences != nil {
		prefs = *in.Preferences
		if prefs.Budget != "" && !prefs.Budget.Valid() {
			return models.Trip{}, domain.ValidationError{Field: "preferences.budget", Msg: "moet low, medium of high zijn"}
		}
	}

	if in.TotalBudget != nil && *in.TotalBudget < 0 {
		return models.Trip{}, domain.ValidationError{Field: "total_budget", Msg: "mag niet negatief zijn"}
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = models.DefaultTripStatus
	}
	isPublic := false
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}

	return models.Trip{
		Title:             title,
		Destination:       destination,
		StartDate:         start,
		EndDate:           end,
		FamilyComposition: family,
		Preferences:       prefs,
		Status:            status,
		TotalBudget:       in.TotalBudget,
		IsPublic:          isPublic,
	}, nil
}

// optionalDate normalizes a YYYY-MM-DD value; blank means absent.
func optionalDate(field, raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := utils.ParseDate(raw)
	if err != nil {
		return nil, domain.ValidationError{Field: field, Msg: "verwacht formaat YYYY-MM-DD", Err: err}
	}
	out := utils.FormatDate(d)
	return &out, nil
}
