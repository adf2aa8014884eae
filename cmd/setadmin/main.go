// Command setadmin promotes or demotes users by nickname. Run it against the
// same database file the server uses:
//
//	setadmin -nickname Marco -role admin
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/laranacanta/backend/internal/config"
	"github.com/laranacanta/backend/internal/database"
	"github.com/laranacanta/backend/internal/db"
	"github.com/laranacanta/backend/internal/services"
)

func main() {
	nickname := flag.String("nickname", "", "nickname of the user to update")
	role := flag.String("role", "", "new role: admin or guest")
	flag.Parse()

	if *nickname == "" || *role == "" {
		fmt.Fprintln(os.Stderr, "usage: setadmin -nickname <nickname> -role <admin|guest>")
		os.Exit(1)
	}
	if *role != string(services.RoleAdmin) && *role != string(services.RoleGuest) {
		fmt.Fprintf(os.Stderr, "invalid role %q: valid roles are admin and guest\n", *role)
		os.Exit(1)
	}

	cfg := config.Load()
	sqlDB, err := database.New(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	queries := db.New(sqlDB)
	updated, err := queries.UpdateUserRoleByNickname(context.Background(), db.UpdateUserRoleByNicknameParams{
		Role:     *role,
		Nickname: *nickname,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to update role: %v\n", err)
		os.Exit(1)
	}

	if updated == 0 {
		fmt.Printf("no user found with nickname %q\n", *nickname)
		return
	}
	fmt.Printf("updated %d user(s) with nickname %q to role %q\n", updated, *nickname, *role)
}
