// Command tablectl provisions the physical tables patrons scan to join:
//
//	tablectl create -name "Mesa 7"
//	tablectl list
//	tablectl deactivate -id 7
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/laranacanta/backend/internal/config"
	"github.com/laranacanta/backend/internal/database"
	"github.com/laranacanta/backend/internal/db"
	"github.com/laranacanta/backend/internal/services"
)

const createAttempts = 10

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg := config.Load()
	sqlDB, err := database.New(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	queries := db.New(sqlDB)
	ctx := context.Background()

	switch os.Args[1] {
	case "create":
		runCreate(ctx, queries, os.Args[2:])
	case "list":
		runList(ctx, queries)
	case "deactivate":
		runSetStatus(ctx, queries, os.Args[2:], db.TableStatusInactive)
	case "activate":
		runSetStatus(ctx, queries, os.Args[2:], db.TableStatusActive)
	default:
		usage()
		os.Exit(1)
	}
}

func runCreate(ctx context.Context, queries *db.Queries, args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	name := fs.String("name", "", "display name of the table")
	code := fs.String("code", "", "join code (generated when omitted)")
	fs.Parse(args)

	if *name == "" {
		fmt.Fprintln(os.Stderr, "usage: tablectl create -name <name> [-code <code>]")
		os.Exit(1)
	}

	// Generated codes retry on the unique constraint; explicit codes fail fast.
	attempts := createAttempts
	if *code != "" {
		attempts = 1
	}

	var table db.Table
	var err error
	for i := 0; i < attempts; i++ {
		joinCode := *code
		if joinCode == "" {
			joinCode = services.GenerateJoinCode()
		}
		table, err = queries.CreateTable(ctx, db.CreateTableParams{Name: *name, JoinCode: joinCode})
		if err == nil {
			break
		}
		if !strings.Contains(err.Error(), "UNIQUE") {
			break
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create table: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("created table %d %q with join code %q\n", table.ID, table.Name, table.JoinCode)
}

func runList(ctx context.Context, queries *db.Queries) {
	tables, err := queries.ListTables(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list tables: %v\n", err)
		os.Exit(1)
	}
	for _, t := range tables {
		fmt.Printf("%d\t%s\t%s\t%s\n", t.ID, t.Name, t.JoinCode, t.Status)
	}
}

func runSetStatus(ctx context.Context, queries *db.Queries, args []string, status string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	id := fs.Int64("id", 0, "table id")
	fs.Parse(args)

	if *id == 0 {
		fmt.Fprintln(os.Stderr, "usage: tablectl activate|deactivate -id <id>")
		os.Exit(1)
	}

	if err := queries.SetTableStatus(ctx, db.SetTableStatusParams{Status: status, ID: *id}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to update table: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("table %d is now %s\n", *id, status)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tablectl <create|list|activate|deactivate> [flags]")
}
