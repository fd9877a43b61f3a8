// Command promote-admin grants or revokes the admin flag of a user who has
// already logged in once through OAuth.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/slovakpatriot/arena/internal/config"
	"github.com/slovakpatriot/arena/internal/db"
	"github.com/slovakpatriot/arena/internal/store"
)

func main() {
	email := flag.String("email", "", "email of the user to promote")
	revoke := flag.Bool("revoke", false, "remove the admin flag instead of granting it")
	flag.Parse()

	if err := run(strings.TrimSpace(*email), !*revoke); err != nil {
		slog.Error("promote-admin failed", "error", err)
		os.Exit(1)
	}
}

func run(email string, isAdmin bool) error {
	if email == "" {
		return errors.New("-email is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB, cfg.MigrationsPath); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.NewUserStore(database).SetAdmin(ctx, email, isAdmin); err != nil {
		return err
	}
	slog.Info("admin flag updated", "email", email, "is_admin", isAdmin)
	return nil
}
