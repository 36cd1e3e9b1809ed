package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/mbergo/guardrails/internal/cli"
	"github.com/mbergo/guardrails/internal/store/model"
	"github.com/mbergo/guardrails/internal/store/sqlite"
)

// Seeds the reference dataset the guardrail checks compare AI output
// against. The embedded migrations already insert these defaults on first
// boot; running this re-asserts them on an existing database.
func main() {
	dsn := flag.String("dsn", "file:guardrails.db?cache=shared&mode=rwc&_journal_mode=WAL&_busy_timeout=5000", "sqlite DSN")
	flag.Parse()

	repo, err := sqlite.NewSQLiteStorage(*dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer repo.Close()

	ctx := context.Background()
	ref := repo.Reference()

	users := []model.ReferenceUser{
		{ID: 1, Name: "Alice Wonderland", Age: 30, Email: "alice@example.com", RegisteredAt: time.Date(2023, 1, 15, 10, 0, 0, 0, time.UTC)},
		{ID: 2, Name: "Bob The Builder", Age: 45, Email: "bob@example.com", RegisteredAt: time.Date(2023, 2, 20, 11, 30, 0, 0, time.UTC)},
		{ID: 3, Name: "Charlie Brown", Age: 8, Email: "charlie@example.com", RegisteredAt: time.Date(2023, 3, 10, 9, 15, 0, 0, time.UTC)},
	}
	for i := range users {
		if err := ref.UpsertUser(ctx, &users[i]); err != nil {
			log.Fatalf("seed user %q: %v", users[i].Name, err)
		}
		fmt.Printf("%s Upserted user %s\n", cli.CheckMark(), cli.Style(users[i].Name, cli.Cyan))
	}

	// Diana has no user row but is still an acceptable name for the
	// phantom-data check.
	if err := ref.AddKnownName(ctx, "Diana Prince"); err != nil {
		log.Fatalf("seed known name: %v", err)
	}
	fmt.Printf("%s Added known name %s\n", cli.CheckMark(), cli.Style("Diana Prince", cli.Cyan))

	schema := []model.SchemaField{
		{Field: "id", Kind: "number", Position: 1},
		{Field: "name", Kind: "string", Position: 2},
		{Field: "age", Kind: "number", Position: 3},
		{Field: "email", Kind: "string", Position: 4},
	}
	for i := range schema {
		if err := ref.SetSchemaField(ctx, &schema[i]); err != nil {
			log.Fatalf("seed schema field %q: %v", schema[i].Field, err)
		}
	}
	fmt.Printf("%s Wrote user schema (%d fields)\n", cli.CheckMark(), len(schema))

	fmt.Printf("\n%s Reference dataset seeded.\n", cli.Arrow())
}
