package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestGetReturnsNotExistsOnNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT value, updated_at FROM app_state WHERE key = \\$1").
		WithArgs(ScheduleKey).
		WillReturnError(sql.ErrNoRows)

	store := NewStore(db)
	snap, err := store.Get(context.Background(), ScheduleKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Exists {
		t.Errorf("Exists = true, want false on a missing key")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetReturnsStoredSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"value", "updated_at"}).
		AddRow([]byte(`{"foo":"bar"}`), now)
	mock.ExpectQuery("SELECT value, updated_at FROM app_state WHERE key = \\$1").
		WithArgs(ScheduleKey).
		WillReturnRows(rows)

	store := NewStore(db)
	snap, err := store.Get(context.Background(), ScheduleKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.Exists {
		t.Fatalf("Exists = false, want true")
	}
	if string(snap.State) != `{"foo":"bar"}` {
		t.Errorf("State = %s, want {\"foo\":\"bar\"}", snap.State)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPutRejectsInvalidJSON(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	store := NewStore(db)
	_, err = store.Put(context.Background(), ScheduleKey, json.RawMessage(`{not json`))
	if err == nil {
		t.Fatal("expected an error for invalid JSON payload")
	}
}

func TestPutUpsertsAndReturnsTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("INSERT INTO app_state").
		WithArgs(ScheduleKey, []byte(`{"a":1}`)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	store := NewStore(db)
	got, err := store.Put(context.Background(), ScheduleKey, json.RawMessage(`{"a":1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(now) {
		t.Errorf("updated_at = %v, want %v", got, now)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
