package moment

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockRepo(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return New(sqlx.NewDb(sqlDB, "postgres")), mock
}

func TestCountPublicByPlaceIDs_Success(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM moment`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"place_id", "moment_count"}).
			AddRow(1, 3).
			AddRow(2, 7))

	counts, err := r.CountPublicByPlaceIDs(context.Background(), []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts[1] != 3 || counts[2] != 7 {
		t.Errorf("counts = %v", counts)
	}
	if _, ok := counts[3]; ok {
		t.Error("place without moments must be absent")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCountPublicByPlaceIDs_EmptyIDs(t *testing.T) {
	r, mock := newMockRepo(t)

	counts, err := r.CountPublicByPlaceIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts == nil || len(counts) != 0 {
		t.Errorf("expected empty map, got %v", counts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCountPublicByPlaceIDs_Error(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM moment`).WillReturnError(errors.New("timeout"))

	if _, err := r.CountPublicByPlaceIDs(context.Background(), []int64{1}); err == nil {
		t.Fatal("expected error")
	}
}
