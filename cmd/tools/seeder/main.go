package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/flattax"
)

// sampleRules are development fixtures, not authoritative tax rates.
var sampleRules = []flattax.Rule{
	{ID: 5, Label: "Cook County Large Cigar 60ct", Amount: decimal.RequireFromString("18.00")},
	{ID: 6, Label: "Cook County Little Cigar 20ct", Amount: decimal.RequireFromString("1.50")},
}

func main() {
	tenantID := flag.String("tenant", "", "seed rules for this tenant instead of globally")
	dryRun := flag.Bool("dry-run", false, "print the rules without writing")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	if *dryRun {
		if err := printRules(context.Background(), flattax.NewMemoryStore(sampleRules...), sampleRules); err != nil {
			log.Fatalf("dry run: %v", err)
		}
		return
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}
	if err := seedFlatTaxRules(db, *tenantID, sampleRules); err != nil {
		log.Fatalf("Failed to seed flat tax rules: %v", err)
	}
	log.Println("Seeding completed successfully!")
}

func printRules(ctx context.Context, p flattax.Provider, rules []flattax.Rule) error {
	for _, r := range rules {
		got, err := p.Lookup(ctx, r.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%d\t%s\t%s\n", got.ID, got.Label, got.Amount.StringFixed(2))
	}
	return nil
}

func seedFlatTaxRules(db *sql.DB, tenantID string, rules []flattax.Rule) error {
	var tenant sql.NullString
	if tenantID != "" {
		tenant = sql.NullString{String: tenantID, Valid: true}
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	fmt.Println("Seeding flat tax rules...")
	for _, r := range rules {
		if r.Amount.IsNegative() {
			return fmt.Errorf("rule %d has negative amount %s", r.ID, r.Amount)
		}
		_, err := tx.Exec(`
			INSERT INTO flat_tax_rules (id, tenant_id, label, amount)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET tenant_id = EXCLUDED.tenant_id, label = EXCLUDED.label,
				amount = EXCLUDED.amount, updated_at = NOW()
		`, r.ID, tenant, r.Label, r.Amount.StringFixed(2))
		if err != nil {
			return fmt.Errorf("upsert rule %d: %w", r.ID, err)
		}
		log.Printf("  %d %s = %s", r.ID, r.Label, r.Amount.StringFixed(2))
	}
	if _, err := tx.Exec(`SELECT setval(pg_get_serial_sequence('flat_tax_rules', 'id'), (SELECT MAX(id) FROM flat_tax_rules))`); err != nil {
		return fmt.Errorf("advance id sequence: %w", err)
	}
	return tx.Commit()
}
