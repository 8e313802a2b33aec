package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"vendor-registry-api/internal/config"
	"vendor-registry-api/internal/store"
	"vendor-registry-api/pkg/importer"
)

func main() {
	var (
		filePath    = flag.String("file", "", "Path to the .xlsx workbook")
		mappingPath = flag.String("mapping", "configs/mapping/vendors.yaml", "Header alias mapping (empty for field names only)")
		sheet       = flag.String("sheet", "", "Sheet to import (default: mapping sheet, then the first sheet)")
		dryRun      = flag.Bool("dry-run", false, "Report what would be inserted without writing")
		maxErrors   = flag.Int("max-errors", 50, "Stop after this many row errors")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Println("Usage: import_vendors --file=vendors.xlsx [--mapping=configs/mapping/vendors.yaml] [--sheet=Vendors] [--dry-run]")
		os.Exit(1)
	}

	cfg, err := config.LoadAndValidate()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.DBType, err)
	}
	defer st.Close()

	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	file, err := os.Open(*filePath)
	if err != nil {
		st.Close()
		log.Fatalf("Failed to open workbook: %v", err)
	}
	defer file.Close()

	fmt.Printf("Importing vendors from %s into %s (dry_run=%v)\n", *filePath, cfg.DBType, *dryRun)
	fmt.Println(strings.Repeat("=", 60))

	summary, importErr := importer.ImportVendors(ctx, st, file, importer.Options{
		Sheet:       *sheet,
		MappingPath: *mappingPath,
		DryRun:      *dryRun,
		MaxErrors:   *maxErrors,
	})

	fmt.Println("IMPORT SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Sheet: %s\n", summary.Sheet)
	fmt.Printf("Total inserted: %d\n", summary.Inserted)
	fmt.Printf("Total skipped: %d\n", summary.Skipped)
	fmt.Printf("Total errors: %d\n", summary.Errors)
	fmt.Printf("Dry run: %v\n", summary.DryRun)

	if len(summary.Samples) > 0 {
		fmt.Println("\nError samples:")
		for _, sample := range summary.Samples {
			fmt.Printf("  Row %d %s: %s\n", sample.Row, sample.PAN, sample.Message)
		}
	}

	if importErr != nil {
		file.Close()
		st.Close()
		log.Fatalf("Import failed: %v", importErr)
	}
}
