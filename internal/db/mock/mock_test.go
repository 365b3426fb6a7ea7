package mock

import (
	"context"
	"testing"
	"time"

	"themeswitch/internal/sessionstore"
	"themeswitch/models"
)

func TestNewProvidesSessionsTable(t *testing.T) {
	db, err := New(context.Background())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if !db.Migrator().HasTable(&models.Session{}) {
		t.Fatal("expected sessions table in mock database")
	}

	store, err := sessionstore.New(db)
	if err != nil {
		t.Fatalf("sessionstore.New error = %v", err)
	}
	if err := store.Commit("mock-token", []byte("data"), time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Commit error = %v", err)
	}
	if _, found, err := store.Find("mock-token"); err != nil || !found {
		t.Fatalf("Find = found %t, err %v", found, err)
	}
}
