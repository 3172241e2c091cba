package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestUser_AddToWatchlist_Distinct(t *testing.T) {
	u := &User{}
	for _, id := range []MovieID{3, 1, 3, 2, 1, 3} {
		u.AddToWatchlist(id)
	}
	want := []MovieID{3, 1, 2}
	if len(u.Watchlist) != len(want) {
		t.Fatalf("Watchlist = %v, want %v", u.Watchlist, want)
	}
	for i := range want {
		if u.Watchlist[i] != want[i] {
			t.Fatalf("Watchlist = %v, want %v", u.Watchlist, want)
		}
	}
}

func TestUser_RemoveFromWatchlist_Idempotent(t *testing.T) {
	u := &User{Watchlist: []MovieID{1, 2, 3}}
	if !u.RemoveFromWatchlist(2) {
		t.Error("first remove should report a change")
	}
	if u.RemoveFromWatchlist(2) {
		t.Error("second remove should be a no-op")
	}
	if len(u.Watchlist) != 2 {
		t.Errorf("Watchlist = %v", u.Watchlist)
	}
}

func TestUser_UpsertReview(t *testing.T) {
	u := &User{}
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first, created := u.UpsertReview(7, 4, "great", t1)
	if !created {
		t.Fatal("first upsert should create")
	}

	t2 := t1.Add(time.Hour)
	second, created := u.UpsertReview(7, 2, "", t2)
	if created {
		t.Fatal("second upsert should update")
	}
	if len(u.Reviews) != 1 {
		t.Fatalf("len(Reviews) = %d, want 1", len(u.Reviews))
	}
	if second.ID != first.ID || second.Rating != 2 || second.Text != "great" || !second.CreatedAt.Equal(t2) {
		t.Errorf("updated review = %+v", second)
	}
}

func TestUser_DeleteReview(t *testing.T) {
	u := &User{}
	r, _ := u.UpsertReview(1, 5, "", time.Now())
	if u.DeleteReview("000000000000000000000000") {
		t.Error("unknown id should not change reviews")
	}
	if !u.DeleteReview(r.ID.Hex()) || len(u.Reviews) != 0 {
		t.Error("known id should be removed")
	}
}

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		user User
		want string
	}{
		{User{Name: "Ana", Username: "ana"}, "Ana"},
		{User{Username: "ana"}, "ana"},
		{User{}, "User"},
	}
	for _, tt := range tests {
		if got := tt.user.DisplayName(); got != tt.want {
			t.Errorf("DisplayName() = %q, want %q", got, tt.want)
		}
	}
}

func TestUser_NeverSerializesPassword(t *testing.T) {
	u := &User{Username: "ana", Password: "$2a$10$hash"}
	out, err := json.Marshal(u)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "password") || strings.Contains(string(out), "hash") {
		t.Errorf("serialized user leaks password: %s", out)
	}
	if u.Sanitized().Password != "" {
		t.Error("Sanitized should clear the hash")
	}
}

func TestUser_CloneIsDeep(t *testing.T) {
	u := &User{Watchlist: []MovieID{1}, Stats: map[string]any{"a": 1}}
	c := u.Clone()
	c.Watchlist[0] = 2
	c.Stats["a"] = 2
	if u.Watchlist[0] != 1 || u.Stats["a"] != 1 {
		t.Error("Clone shares state with the original")
	}
}

func TestUser_SanitizedKeepsEmptyCollections(t *testing.T) {
	u := &User{Username: "n"}
	u.Normalize()
	u.AddToWatchlist(5)
	u.RemoveFromWatchlist(5)

	out, err := json.Marshal(u.Sanitized())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"watchlist":[]`, `"reviews":[]`, `"favoriteGenres":[]`, `"stats":{}`} {
		if !strings.Contains(string(out), want) {
			t.Errorf("sanitized user %s missing %s", out, want)
		}
	}

	if c := (&User{Watchlist: []MovieID{}}).Clone(); c.Watchlist == nil {
		t.Error("Clone turned an empty watchlist into nil")
	}
}
