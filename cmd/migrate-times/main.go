// Command migrate-times rewrites the timestamps of comments, notifies and
// draft slots as UTC so they sort and compare consistently.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/debemdeboas/archive-comments/internal/config"
	"github.com/debemdeboas/archive-comments/internal/db"
)

// table names a timestamp column and the key that identifies its rows.
type table struct {
	name   string
	key    string
	column string
}

var tables = []table{
	{name: "comments", key: "id", column: "created_at"},
	{name: "notifies", key: "id", column: "created_at"},
	{name: config.SlotsTable, key: "key", column: "updated_at"},
}

// parseFuzzyTime attempts to parse a timestamp string using multiple formats.
func parseFuzzyTime(timeStr string) (time.Time, error) {
	timeFormats := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05-07:00",
		time.RFC3339,
		"2006-01-02 15:04:05", // Added for cases without timezone info
	}

	var parsedTime time.Time
	var err error
	for _, format := range timeFormats {
		parsedTime, err = time.Parse(format, timeStr)
		if err == nil {
			return parsedTime.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse time '%s' with any known format", timeStr)
}

// normalize rewrites every parseable timestamp in t and returns how many rows
// were updated.
func normalize(sqlDB *sql.DB, t table) (int, error) {
	rows, err := sqlDB.Query(fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s IS NOT NULL", t.key, t.column, t.name, t.column))
	if err != nil {
		return 0, fmt.Errorf("failed to query %s: %w", t.name, err)
	}

	type row struct {
		key   string
		stamp string
	}
	var pending []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.key, &r.stamp); err != nil {
			log.Printf("%s: failed to scan row: %v", t.name, err)
			continue
		}
		pending = append(pending, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error during %s row iteration: %w", t.name, err)
	}

	updated := 0
	for _, r := range pending {
		stamp, err := parseFuzzyTime(r.stamp)
		if err != nil {
			log.Printf("%s %s: could not parse %s '%s': %v", t.name, r.key, t.column, r.stamp, err)
			continue
		}
		query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?", t.name, t.column, t.key)
		if _, err := sqlDB.Exec(query, stamp, r.key); err != nil {
			log.Printf("%s %s: failed to update %s: %v", t.name, r.key, t.column, err)
			continue
		}
		updated++
	}
	return updated, nil
}

func main() {
	path := flag.String("db", "./comments.db", "SQLite database to migrate")
	flag.Parse()

	log.Println("Starting timestamp migration...")

	database := db.NewSQLite(*path)
	if err := database.InitDB(); err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer database.Close()

	for _, t := range tables {
		updated, err := normalize(database.Get(), t)
		if err != nil {
			log.Fatalf("Migration of %s failed: %v", t.name, err)
		}
		log.Printf("%s: normalized %d timestamps", t.name, updated)
	}

	log.Println("Timestamp migration complete.")
}
