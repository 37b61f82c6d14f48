package main

import (
	"testing"
	"time"

	"github.com/debemdeboas/archive-comments/internal/db"
	"github.com/rs/zerolog"
)

func TestParseFuzzyTime(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
	}{
		{"RFC3339", "2024-03-01T12:30:00Z"},
		{"offset", "2024-03-01T09:30:00-03:00"},
		{"sqlite with zone", "2024-03-01 09:30:00-03:00"},
		{"sqlite without zone", "2024-03-01 12:30:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFuzzyTime(tt.input)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if !got.Equal(want) || got.Location() != time.UTC {
				t.Errorf("Expected %v, got %v", want, got)
			}
		})
	}

	if _, err := parseFuzzyTime("yesterday"); err == nil {
		t.Error("Expected error for unparseable input")
	}
}

func TestNormalize(t *testing.T) {
	db.SetLogger(zerolog.Nop())
	database := db.NewSQLite(db.MemoryPath)
	if err := database.InitDB(); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	_, err := database.Exec(
		`INSERT INTO comments (page_key, nick, email, content, created_at) VALUES
		('/', 'ana', 'ana@example.com', '', '2024-03-01 09:30:00-03:00'),
		('/', 'bob', 'bob@example.com', '', 'garbage')`,
	)
	if err != nil {
		t.Fatalf("Failed to seed comments: %v", err)
	}

	updated, err := normalize(database.Get(), tables[0])
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated != 1 {
		t.Errorf("Expected 1 updated row, got %d", updated)
	}
}
