package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
)

func TestAdminMatches(t *testing.T) {
	admin := Admin{Nick: "Ana", Email: "ana@example.com"}

	tests := []struct {
		name  string
		nick  string
		email string
		want  bool
	}{
		{"exact", "Ana", "ana@example.com", true},
		{"case and space", " ana ", "ANA@example.com ", true},
		{"no nick", "", "ana@example.com", true},
		{"other nick", "bob", "ana@example.com", false},
		{"other email", "Ana", "bob@example.com", false},
		{"empty email", "Ana", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := admin.Matches(tt.nick, tt.email); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	if (Admin{Nick: "ana"}).Matches("ana", "") {
		t.Error("Expected an admin without email to match nobody")
	}
}

type fakeDirectory struct {
	admin bool
	err   error
	calls int
}

func (d *fakeDirectory) IsAdmin(context.Context, string, string) (bool, error) {
	d.calls++
	return d.admin, d.err
}

func TestDirectories(t *testing.T) {
	ctx := context.Background()

	t.Run("Static", func(t *testing.T) {
		dir := StaticDirectory{{Nick: "ana", Email: "ana@example.com"}}
		if ok, _ := dir.IsAdmin(ctx, "ana", "ana@example.com"); !ok {
			t.Error("Expected ana to be an administrator")
		}
		if ok, _ := dir.IsAdmin(ctx, "bob", "bob@example.com"); ok {
			t.Error("Expected bob not to be an administrator")
		}
	})

	t.Run("First match wins", func(t *testing.T) {
		first := &fakeDirectory{admin: true}
		second := &fakeDirectory{}

		ok, err := Directories{first, second}.IsAdmin(ctx, "ana", "ana@example.com")
		if !ok || err != nil {
			t.Errorf("Expected admin without error, got %v, %v", ok, err)
		}
		if second.calls != 0 {
			t.Error("Expected lookup to stop at the first match")
		}
	})

	t.Run("Errors do not hide a later match", func(t *testing.T) {
		broken := &fakeDirectory{err: errors.New("boom")}
		ok, err := Directories{broken, &fakeDirectory{admin: true}}.IsAdmin(ctx, "ana", "ana@example.com")
		if !ok || err != nil {
			t.Errorf("Expected admin without error, got %v, %v", ok, err)
		}
	})

	t.Run("Errors are reported without a match", func(t *testing.T) {
		broken := &fakeDirectory{err: errors.New("boom")}
		ok, err := Directories{broken, &fakeDirectory{}}.IsAdmin(ctx, "ana", "ana@example.com")
		if ok || err == nil {
			t.Errorf("Expected error and no admin, got %v, %v", ok, err)
		}
	})
}

func strPtr(s string) *string { return &s }

func TestClerkDirectory(t *testing.T) {
	users := []*clerk.User{
		{ID: "user_1", Username: strPtr("bob"), PublicMetadata: []byte(`{"role":"admin"}`)},
		{ID: "user_2", Username: strPtr("ana"), PublicMetadata: []byte(`{"role":"admin"}`)},
		{ID: "user_3", Username: strPtr("eve"), PublicMetadata: []byte(`{"role":"member"}`)},
		{ID: "user_4", PublicMetadata: []byte(`not json`)},
	}

	var asked string
	dir := &ClerkDirectory{
		role: ClerkAdminRole,
		users: func(_ context.Context, email string) ([]*clerk.User, error) {
			asked = email
			return users, nil
		},
	}

	tests := []struct {
		nick string
		want bool
	}{
		{"ana", true},
		{"ANA", true},
		{"", true},
		{"eve", false},
		{"mallory", false},
	}

	for _, tt := range tests {
		t.Run(tt.nick, func(t *testing.T) {
			ok, err := dir.IsAdmin(context.Background(), tt.nick, " ana@example.com ")
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if ok != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, ok)
			}
			if asked != "ana@example.com" {
				t.Errorf("Expected trimmed email lookup, got %q", asked)
			}
		})
	}

	t.Run("Empty email skips the lookup", func(t *testing.T) {
		asked = ""
		if ok, _ := dir.IsAdmin(context.Background(), "ana", ""); ok {
			t.Error("Expected no administrator")
		}
		if asked != "" {
			t.Error("Expected no clerk call")
		}
	})

	t.Run("Lookup failure", func(t *testing.T) {
		failing := &ClerkDirectory{role: ClerkAdminRole, users: func(context.Context, string) ([]*clerk.User, error) {
			return nil, errors.New("unauthorized")
		}}
		if _, err := failing.IsAdmin(context.Background(), "ana", "ana@example.com"); err == nil {
			t.Error("Expected error")
		}
	})
}

func TestTokenStore(t *testing.T) {
	store := NewTokenStore(time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	token, session := store.Issue(testAdmin)
	if token == "" {
		t.Fatal("Expected a token")
	}
	if !session.Expires.Equal(now.Add(time.Hour)) {
		t.Errorf("Expected expiry %v, got %v", now.Add(time.Hour), session.Expires)
	}

	other, _ := store.Issue(testAdmin)
	if other == token {
		t.Error("Expected every token to be unique")
	}

	got, err := store.Lookup(token)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.Admin != testAdmin {
		t.Errorf("Expected %+v, got %+v", testAdmin, got.Admin)
	}

	store.Revoke(token)
	if _, err := store.Lookup(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken after revoke, got %v", err)
	}
	if _, err := store.Lookup(""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for empty token, got %v", err)
	}

	if NewTokenStore(0).ttl != 24*time.Hour {
		t.Error("Expected non-positive ttl to fall back to a day")
	}
}

func TestWithToken(t *testing.T) {
	store := NewTokenStore(time.Hour)
	token, _ := store.Issue(testAdmin)

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"raw token", token, true},
		{"bearer token", "Bearer " + token, true},
		{"unknown token", "nope", false},
		{"no header", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var found bool
			var session Session
			handler := WithToken(store, "X-Archive-Token")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				session, found = SessionFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("X-Archive-Token", tt.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if found != tt.want {
				t.Errorf("Expected session found=%v, got %v", tt.want, found)
			}
			if found && session.Admin != testAdmin {
				t.Errorf("Expected %+v, got %+v", testAdmin, session.Admin)
			}
		})
	}
}
