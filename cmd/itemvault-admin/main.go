// Package main is the entry point for the ItemVault admin CLI.
// This tool provides administrative commands for managing users and
// generating signing secrets.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/itemvault-io/itemvault/internal/config"
	"github.com/itemvault-io/itemvault/internal/pkg/crypto"
	"github.com/itemvault-io/itemvault/internal/repository"
	"github.com/itemvault-io/itemvault/internal/repository/postgres"
	"github.com/itemvault-io/itemvault/internal/repository/sqlite"
	"github.com/itemvault-io/itemvault/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	var err error
	switch command {
	case "version":
		fmt.Printf("ItemVault Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		err = userCommand(os.Args[2:])

	case "secret":
		err = secretCommand()

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// secretCommand prints a freshly generated signing secret. The secret is
// written to stdout only; it is never logged.
func secretCommand() error {
	secret, err := crypto.GenerateSigningSecret()
	if err != nil {
		return fmt.Errorf("failed to generate secret: %w", err)
	}
	fmt.Println(secret)
	return nil
}

func userCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("user command requires a subcommand: create, list, activate, deactivate")
	}

	subcommand := args[0]
	args = args[1:]

	switch subcommand {
	case "create":
		fs := flag.NewFlagSet("user create", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		email := fs.String("email", "", "email address")
		username := fs.String("username", "", "username")
		password := fs.String("password", "", "password")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *email == "" || *username == "" || *password == "" {
			return fmt.Errorf("--email, --username and --password are required")
		}
		return withUserService(*configPath, func(ctx context.Context, users *service.UserService) error {
			user, err := users.Register(ctx, service.RegisterInput{
				Email:    *email,
				Username: *username,
				Password: *password,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created user %q (id=%d)\n", user.Username, user.ID)
			return nil
		})

	case "list":
		fs := flag.NewFlagSet("user list", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		limit := fs.Int("limit", 50, "maximum number of users to list")
		offset := fs.Int("offset", 0, "number of users to skip")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return withUserService(*configPath, func(ctx context.Context, users *service.UserService) error {
			result, err := users.List(ctx, service.ListUsersInput{Limit: *limit, Offset: *offset})
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tACTIVE\tCREATED")
			for _, u := range result.Items {
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\n",
					u.ID, u.Username, u.Email, u.IsActive, u.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		})

	case "activate", "deactivate":
		fs := flag.NewFlagSet("user "+subcommand, flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		username := fs.String("username", "", "username")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *username == "" {
			return fmt.Errorf("--username is required")
		}
		active := subcommand == "activate"
		return withUserService(*configPath, func(ctx context.Context, users *service.UserService) error {
			user, err := users.GetByUsername(ctx, *username)
			if err != nil {
				return err
			}
			if err := users.SetActive(ctx, user.ID, active); err != nil {
				return err
			}
			fmt.Printf("User %q is now %s\n", user.Username, map[bool]string{true: "active", false: "inactive"}[active])
			return nil
		})

	default:
		return fmt.Errorf("unknown user subcommand: %s", subcommand)
	}
}

// withUserService loads config, opens the store, runs fn, and cleans up.
func withUserService(configPath string, fn func(context.Context, *service.UserService) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := context.Background()
	logger := zerolog.Nop()

	var userRepo repository.UserRepository
	var closeStore func()

	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			return fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
		userRepo = sqlite.NewUserRepository(db)
		closeStore = func() { db.Close() }

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		userRepo = postgres.NewUserRepository(db)
		closeStore = func() { db.Close() }

	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
	defer closeStore()

	return fn(ctx, service.NewUserService(userRepo, logger))
}

func printUsage() {
	fmt.Println(`ItemVault Admin CLI

Usage:
  itemvault-admin <command> [arguments]

Commands:
  user        Manage users (create, list, activate, deactivate)
  secret      Generate a new token signing secret
  version     Print version information
  help        Show this help message

Examples:
  itemvault-admin user create --username admin --email admin@example.com --password changeme
  itemvault-admin user list --limit 20
  itemvault-admin user deactivate --username mallory
  itemvault-admin secret

Use "itemvault-admin <command> --help" for more information about a command.`)
}
