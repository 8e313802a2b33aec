package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"vendor-registry-api/internal/config"
	"vendor-registry-api/internal/models"
	"vendor-registry-api/internal/store"
)

// resetdb drops the vendor table and recreates it empty. Every record is lost.
func main() {
	confirm := flag.String("confirm", "", "Must equal the table name ("+models.TableName+") to proceed")
	flag.Parse()

	if *confirm != models.TableName {
		fmt.Fprintf(os.Stderr, "Refusing to reset: pass -confirm %s to drop every vendor record\n", models.TableName)
		os.Exit(2)
	}

	cfg, err := config.LoadAndValidate()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.DBType, err)
	}
	defer st.Close()

	fmt.Printf("Resetting %s on %s backend...\n", models.TableName, cfg.DBType)
	if err := st.Reset(ctx); err != nil {
		st.Close()
		log.Fatalf("Reset failed: %v", err)
	}
	fmt.Println("Vendor table reset")
}
