// Package main provides admin account utilities for Business In Rwanda.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"bizrwanda/internal/config"
	"bizrwanda/internal/database"
	"bizrwanda/internal/models"
	"bizrwanda/internal/repository"
	"bizrwanda/internal/service"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin promote <user_id>            - Promote user to admin")
	fmt.Println("  go run ./cmd/admin demote <user_id> [role]      - Demote admin to employer (default) or job_seeker")
	fmt.Println("  go run ./cmd/admin create <email> <password>    - Create or promote an admin account")
	fmt.Println("  go run ./cmd/admin list-admins                  - List all admins")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)

	switch os.Args[1] {
	case "promote":
		if len(os.Args) < 3 {
			usage()
		}
		setRole(ctx, users, os.Args[2], models.RoleAdmin)

	case "demote":
		if len(os.Args) < 3 {
			usage()
		}
		role := models.RoleEmployer
		if len(os.Args) > 3 {
			role = models.Role(os.Args[3])
		}
		if !role.Valid() || role == models.RoleAdmin {
			log.Fatalf("Invalid demotion role %q", role)
		}
		setRole(ctx, users, os.Args[2], role)

	case "create":
		if len(os.Args) < 4 {
			usage()
		}
		user, created, err := service.NewAuthService(users).EnsureAdmin(ctx, os.Args[2], os.Args[3])
		if err != nil {
			log.Fatalf("Failed to ensure admin: %v", err)
		}
		if created {
			fmt.Printf("Created admin %s (ID: %d)\n", user.Email, user.ID)
		} else {
			fmt.Printf("%s (ID: %d) is an admin\n", user.Email, user.ID)
		}

	case "list-admins":
		listAdmins(ctx, users)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
	}
}

func setRole(ctx context.Context, users repository.UserRepository, rawID string, role models.Role) {
	id, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil || id == 0 {
		log.Fatalf("Invalid user ID %q", rawID)
	}

	user, err := users.GetByID(ctx, uint(id))
	if err != nil {
		if models.IsNotFound(err) {
			fmt.Printf("User with ID %d not found\n", id)
			os.Exit(1)
		}
		log.Fatalf("Database error: %v", err)
	}

	if user.Role == role {
		fmt.Printf("User %s (ID: %d) already has role %s\n", user.Email, user.ID, role)
		return
	}
	if err := users.UpdateRole(ctx, user.ID, role); err != nil {
		log.Fatalf("Failed to update role: %v", err)
	}
	fmt.Printf("Changed %s (ID: %d) from %s to %s\n", user.Email, user.ID, user.Role, role)
}

func listAdmins(ctx context.Context, users repository.UserRepository) {
	admins, err := users.List(ctx, models.RoleAdmin)
	if err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found in the system")
		return
	}

	fmt.Println("\nCurrent Admins:")
	fmt.Println("─────────────────────────────────────")
	for _, admin := range admins {
		fmt.Printf("ID: %d | Name: %s | Email: %s\n", admin.ID, admin.FullName, admin.Email)
	}
	fmt.Println("─────────────────────────────────────")
}
