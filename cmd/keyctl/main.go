// Command keyctl manages API credentials and inspects what they did.
//
//	keyctl provision [-key id] [-secret s] [-allow ip,ip]
//	keyctl deactivate -key id
//	keyctl activity -key id
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"orderhub/cmd"
	"orderhub/internal/adapters/out/postgres"
	"orderhub/internal/core/application/usecases/commands"
	"orderhub/internal/core/application/usecases/queries"
	"orderhub/internal/core/domain/model/kernel"

	"github.com/labstack/gommon/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	configs, err := cmd.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	gormDB, err := gorm.Open(gormpostgres.Open(configs.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err = postgres.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: configs.LogLevel}))
	app := cmd.NewCompositionRoot(configs, gormDB, logger)

	if err = run(context.Background(), &app, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: keyctl provision [-key id] [-secret s] [-allow ip,ip]")
	_, _ = fmt.Fprintln(w, "       keyctl deactivate -key id")
	_, _ = fmt.Fprintln(w, "       keyctl activity -key id")
}

func run(ctx context.Context, app *cmd.CompositionRoot, name string, args []string, out io.Writer) error {
	switch name {
	case "provision":
		return provision(ctx, app, args, out)
	case "deactivate":
		return deactivate(ctx, app, args, out)
	case "activity":
		return activity(ctx, app, args, out)
	default:
		usage(out)
		return fmt.Errorf("unknown command %q", name)
	}
}

func provision(ctx context.Context, app *cmd.CompositionRoot, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("provision", flag.ContinueOnError)
	keyID := fs.String("key", "", "key id (generated when empty)")
	secret := fs.String("secret", "", "shared secret (generated when empty)")
	allow := fs.String("allow", "", "comma separated IP allowlist (empty allows any)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var allowlist []string
	if *allow != "" {
		allowlist = strings.Split(*allow, ",")
	}

	provisioned, err := app.CreateProvisionIdentityCommandHandler().Handle(ctx,
		commands.NewProvisionIdentityCommand(*keyID, *secret, allowlist))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "key_id=%s\nsecret=%s\n", provisioned.Identity.KeyID(), provisioned.Secret)
	return err
}

func deactivate(ctx context.Context, app *cmd.CompositionRoot, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("deactivate", flag.ContinueOnError)
	keyID := fs.String("key", "", "key id to deactivate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	command, err := commands.NewDeactivateIdentityCommand(*keyID)
	if err != nil {
		return err
	}
	if err = app.CreateDeactivateIdentityCommandHandler().Handle(ctx, command); err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "deactivated %s\n", command.KeyID())
	return err
}

func activity(ctx context.Context, app *cmd.CompositionRoot, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("activity", flag.ContinueOnError)
	keyID := fs.String("key", "", "key id whose audit entries to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	query, err := queries.NewGetActorActivityQuery(kernel.Actor{Type: kernel.ActorTypeAPI, ID: *keyID})
	if err != nil {
		return err
	}
	entries, err := app.CreateGetActorActivityQueryHandler().Handle(ctx, query)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	for _, entry := range entries {
		if err = enc.Encode(entry); err != nil {
			return err
		}
	}
	return nil
}
