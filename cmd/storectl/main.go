// Command storectl runs offline maintenance against the store database.
//
//	storectl export -out snapshot.json
//	storectl import -in snapshot.json
//	storectl create-admin -email admin@example.com -password secret123 -name "Admin User"
//	storectl check
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"woolcrafts-backend/config"
	"woolcrafts-backend/database"

	"gorm.io/gorm"
)

// errIssuesFound makes check exit non-zero when drift was reported.
var errIssuesFound = errors.New("integrity issues found")

type opener func(ctx context.Context, dsn string) (*gorm.DB, error)

type cli struct {
	open   opener
	stdout io.Writer
	stderr io.Writer
}

func main() {
	_ = config.LoadEnv()

	c := &cli{open: database.Connect, stdout: os.Stdout, stderr: os.Stderr}
	if err := c.run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "storectl:", err)
		os.Exit(1)
	}
}

func (c *cli) usage() {
	fmt.Fprintln(c.stderr, "usage: storectl <export|import|create-admin|check> [flags]")
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.usage()
		return errors.New("no command given")
	}

	cmd, rest := args[0], args[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	dsn := fs.String("dsn", config.GetEnv("DATABASE_URL", ""), "database connection string")

	switch cmd {
	case "export":
		out := fs.String("out", "-", "snapshot file, - for stdout")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return c.withDB(ctx, *dsn, func(db *gorm.DB) error { return c.export(db, *out) })

	case "import":
		in := fs.String("in", "", "snapshot file to load")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *in == "" {
			return errors.New("import: -in is required")
		}
		return c.withDB(ctx, *dsn, func(db *gorm.DB) error { return c.importSnapshot(db, *in) })

	case "create-admin":
		email := fs.String("email", "", "admin email")
		password := fs.String("password", "", "admin password")
		name := fs.String("name", "Admin User", "admin full name")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return c.withDB(ctx, *dsn, func(db *gorm.DB) error { return c.createAdmin(db, *email, *password, *name) })

	case "check":
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return c.withDB(ctx, *dsn, c.check)

	default:
		c.usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (c *cli) withDB(ctx context.Context, dsn string, fn func(db *gorm.DB) error) error {
	db, err := c.open(ctx, dsn)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return fn(db)
}

func (c *cli) export(db *gorm.DB, out string) error {
	w := c.stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	snap, err := database.Export(db, w)
	if err != nil {
		return err
	}
	if out != "-" {
		fmt.Fprintf(c.stdout, "exported %d categories, %d products, %d users, %d orders to %s\n",
			len(snap.Categories), len(snap.Products), len(snap.Users), len(snap.Orders), out)
	}
	return nil
}

func (c *cli) importSnapshot(db *gorm.DB, in string) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	snap, err := database.Import(db, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "imported %d categories, %d products, %d users, %d orders\n",
		len(snap.Categories), len(snap.Products), len(snap.Users), len(snap.Orders))
	return nil
}

func (c *cli) createAdmin(db *gorm.DB, email, password, name string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return errors.New("create-admin: -email and -password are required")
	}
	if len(password) < 6 {
		return errors.New("create-admin: password must be at least 6 characters long")
	}

	user, created, err := database.CreateAdmin(db, email, password, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(c.stdout, "created admin %s (%s)\n", user.Email, user.ID)
	} else {
		fmt.Fprintf(c.stdout, "%s is an admin\n", user.Email)
	}
	return nil
}

func (c *cli) check(db *gorm.DB) error {
	issues, err := database.Check(db)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		fmt.Fprintln(c.stdout, "no issues found")
		return nil
	}
	for _, is := range issues {
		fmt.Fprintf(c.stdout, "%-28s %s  %s\n", is.Kind, is.EntityID, is.Detail)
	}
	return fmt.Errorf("%w: %d", errIssuesFound, len(issues))
}
