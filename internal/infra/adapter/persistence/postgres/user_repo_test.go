package postgres_test

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"community-gateway/internal/domain/entity"
	"community-gateway/internal/infra/adapter/persistence/postgres"
)

/* ──────────────────────────────── helpers ──────────────────────────────── */

var publicColumns = []string{"id", "full_name", "avatar_url", "claims", "bio"}

func strPtr(s string) *string { return &s }

/* ──────────────────────────────── 1. GetPublic ──────────────────────────────── */

func TestUserRepo_GetPublic(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, full_name, avatar_url, claims, bio`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(publicColumns).
			AddRow("u1", "Ann", nil, []byte(`{"premium":true}`), []byte(`"hello"`)))

	got, err := postgres.NewUserRepo(db).GetPublic(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetPublic err=%v", err)
	}

	want := &entity.PublicProfile{
		ID:       "u1",
		FullName: strPtr("Ann"),
		Claims:   json.RawMessage(`{"premium":true}`),
		Bio:      json.RawMessage(`"hello"`),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUserRepo_GetPublic_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`FROM public.users`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(publicColumns))

	_, err := postgres.NewUserRepo(db).GetPublic(context.Background(), "missing")
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err.Error() != entity.NoRowsMessage {
		t.Errorf("message = %q, want %q", err.Error(), entity.NoRowsMessage)
	}
}

/* ──────────────────────────────── 2. ListPublic ──────────────────────────────── */

func TestUserRepo_ListPublic(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`WHERE deactivated = false`).
		WithArgs("ann", 100).
		WillReturnRows(sqlmock.NewRows(publicColumns).
			AddRow("u1", "Ann", "https://cdn/a.png", nil, nil).
			AddRow("u2", "Anna", nil, nil, nil))

	got, err := postgres.NewUserRepo(db).ListPublic(context.Background(), "ann", 100)
	if err != nil || len(got) != 2 {
		t.Fatalf("ListPublic err=%v len=%d", err, len(got))
	}
	if got[0].AvatarURL == nil || *got[0].AvatarURL != "https://cdn/a.png" {
		t.Errorf("avatar_url = %v", got[0].AvatarURL)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUserRepo_ListPublic_Empty(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`ORDER BY created_at DESC`).
		WithArgs("", 100).
		WillReturnRows(sqlmock.NewRows(publicColumns))

	got, err := postgres.NewUserRepo(db).ListPublic(context.Background(), "", 100)
	if err != nil {
		t.Fatalf("ListPublic err=%v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("ListPublic = %#v, want empty non-nil slice", got)
	}
}

/* ──────────────────────────────── 3. GetSelf ──────────────────────────────── */

func TestUserRepo_GetSelf(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	row := `{"id":"u1","full_name":"Ann","email":"ann@example.com","deactivated":false}`
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT row_to_json(u)`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"row_to_json"}).AddRow([]byte(row)))

	got, err := postgres.NewUserRepo(db).GetSelf(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetSelf err=%v", err)
	}
	if string(got) != row {
		t.Errorf("GetSelf = %s, want %s", got, row)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
