// Command admin manages records that have no HTTP surface.
//
//	admin create-user -username alex -password secret [-unique]
//	admin list-contacts [-json]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ranjit-agency/site/internal/app"
	"github.com/ranjit-agency/site/internal/config"
	"github.com/ranjit-agency/site/internal/domain"
	"github.com/ranjit-agency/site/internal/pkg/logger"
	"github.com/ranjit-agency/site/internal/storage"
)

func main() {
	configPath := os.Getenv("SITE_CONFIG")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	if err := checkConfig(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{Level: "warn", Format: "text"})

	ctx := context.Background()
	deps, err := app.Open(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	err = run(ctx, deps.Store, os.Args[1:], os.Stdout)
	deps.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

var (
	errUsage         = errors.New("usage: admin <create-user|list-contacts> [flags]")
	errMemoryBackend = errors.New("storage.type is memory: records would not outlive this process; set STORAGE_TYPE to postgres or redis")
)

// checkConfig rejects configurations the admin commands cannot act on.
func checkConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Storage.Type == config.StorageMemory {
		return errMemoryBackend
	}
	return nil
}

func run(ctx context.Context, store storage.Storage, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "create-user":
		return createUser(ctx, store, args[1:], out)
	case "list-contacts":
		return listContacts(ctx, store, args[1:], out)
	default:
		return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
	}
}

func createUser(ctx context.Context, store storage.Storage, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(out)
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")
	unique := fs.Bool("unique", false, "fail if the username already exists")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := domain.InsertUser{Username: *username, Password: *password}
	if errs := in.Validate(); len(errs) > 0 {
		return fmt.Errorf("%s: %s", errs[0].Field, errs[0].Message)
	}
	create := store.CreateUser
	if *unique {
		create = store.CreateUserUnique
	}
	u, err := create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created user %s (%s)\n", u.Username, u.ID)
	return nil
}

func listContacts(ctx context.Context, store storage.Storage, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list-contacts", flag.ContinueOnError)
	fs.SetOutput(out)
	asJSON := fs.Bool("json", false, "print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	subs, err := store.GetContactSubmissions(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(subs)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tID\tNAME\tEMAIL\tSUBJECT")
	for _, s := range subs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.CreatedAt.Format(time.RFC3339), s.ID, s.Name, s.Email, s.Subject)
	}
	return tw.Flush()
}
