package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"familytrip/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

var tripRowColumns = []string{
	"id", "user_id", "title", "destination", "start_date", "end_date",
	"family_composition", "preferences", "status", "total_budget", "is_public", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (TripsRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return TripsRepository{DB: sqlx.NewDb(db, "mysql")}, mock
}

func TestListByUserScansRowsInStoreOrder(t *testing.T) {
	repo, mock := newMockRepo(t)
	newer := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	older := newer.Add(-24 * time.Hour)

	rows := sqlmock.NewRows(tripRowColumns).
		AddRow("t2", "user-1", "Zomer", "Texel", "2025-07-01", "2025-07-10",
			[]byte(`{"adults":2,"children":[4,7]}`), []byte(`{"budget":"low","interests":["strand"],"description":"rustig"}`),
			"planning", 1500.0, false, newer, newer).
		AddRow("t1", "user-1", "Herfst", "Ardennen", nil, nil,
			[]byte(`{"adults":1}`), []byte(`{}`),
			"booked", nil, true, older, older)

	mock.ExpectQuery("SELECT (.+) FROM trips\\s+WHERE user_id = \\?\\s+ORDER BY created_at DESC, id DESC").
		WithArgs("user-1").
		WillReturnRows(rows)

	trips, err := repo.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(trips) != 2 || trips[0].ID != "t2" || trips[1].ID != "t1" {
		t.Fatalf("unexpected trips %+v", trips)
	}

	first := trips[0]
	if first.StartDate == nil || *first.StartDate != "2025-07-01" {
		t.Fatalf("start_date not scanned: %v", first.StartDate)
	}
	if first.FamilyComposition.Adults != 2 || len(first.FamilyComposition.Children) != 2 {
		t.Fatalf("family_composition not scanned: %+v", first.FamilyComposition)
	}
	if first.Preferences.Budget != models.BudgetLow || first.Preferences.Extra["description"] != "rustig" {
		t.Fatalf("preferences not scanned: %+v", first.Preferences)
	}
	if first.TotalBudget == nil || *first.TotalBudget != 1500 {
		t.Fatalf("total_budget not scanned: %v", first.TotalBudget)
	}

	second := trips[1]
	if second.StartDate != nil || second.TotalBudget != nil {
		t.Fatalf("nullable columns should stay nil: %+v", second)
	}
	if second.FamilyComposition.Children == nil {
		t.Fatalf("children should default to an empty list")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListByUserEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM trips").WithArgs("nobody").WillReturnRows(sqlmock.NewRows(tripRowColumns))

	trips, err := repo.ListByUser(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if trips == nil || len(trips) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", trips)
	}
}

func TestGetByIDScopesByOwner(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM trips\\s+WHERE id = \\? AND user_id = \\?").
		WithArgs("t1", "intruder").
		WillReturnRows(sqlmock.NewRows(tripRowColumns))

	_, err := repo.GetByID(context.Background(), "intruder", "t1")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestInsertWritesJSONColumns(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	trip := models.Trip{
		ID:                "t1",
		UserID:            "user-1",
		Title:             "Zomer",
		Destination:       "Texel",
		FamilyComposition: models.FamilyComposition{Adults: 2},
		Status:            "planning",
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	mock.ExpectExec("INSERT INTO trips").
		WithArgs("t1", "user-1", "Zomer", "Texel", nil, nil,
			`{"adults":2,"children":[]}`, `{}`, "planning", nil, false, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Insert(context.Background(), trip); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteReportsRowsAffected(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("DELETE FROM trips WHERE id = \\? AND user_id = \\?").
		WithArgs("t1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.Delete(context.Background(), "user-1", "t1")
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if n != 0 {
		t.Fatalf("rows affected = %d, want 0", n)
	}
}

func TestEnsureSchemaMySQL(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS trips").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("information_schema.columns").WithArgs("trips", "total_budget").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery("information_schema.columns").WithArgs("trips", "is_public").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("ALTER TABLE trips ADD COLUMN is_public BOOLEAN NOT NULL DEFAULT FALSE").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
