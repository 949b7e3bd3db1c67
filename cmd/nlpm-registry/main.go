// Copyright 2026 The NLPM Authors
// SPDX-License-Identifier: Apache-2.0

// nlpm-registry is the operator's window into the registry: it lists
// libraries, shows versions and file trees, prints file content, and
// runs the cascading deletes. It is thin glue over lib/registry; all
// invariants live in the core packages.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/Liiesl/nlpm/lib/classify"
	"github.com/Liiesl/nlpm/lib/config"
	"github.com/Liiesl/nlpm/lib/registry"
)

const usage = `usage: nlpm-registry [flags] <command> [args]

commands:
  list                              list libraries with latest versions
  show <library>                    show a library and its versions
  files <library> <version>         list a version's file manifest
  cat <library> <version> [path]    print a file (default file if no path)
  delete-version <library> <version>
  delete-library <library>

flags:
`

func main() {
	if err := run(); err != nil {
		if errors.Is(err, registry.ErrNotFound) || errors.Is(err, registry.ErrBlobMissing) {
			fmt.Fprintf(os.Stderr, "nlpm-registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath string
		rootDir    string
		verbose    bool
	)
	pflag.StringVar(&configPath, "config", "", "path to config file (default $NLPM_CONFIG)")
	pflag.StringVar(&rootDir, "root", "", "registry root directory (overrides config)")
	pflag.BoolVar(&verbose, "verbose", false, "log operational messages to stderr")
	pflag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	args := pflag.Args()
	if len(args) == 0 {
		pflag.Usage()
		return fmt.Errorf("missing command")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if rootDir != "" {
		cfg.Root = rootDir
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if verbose {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	reg, err := registry.Open(registry.Config{
		Root:     cfg.Root,
		PoolSize: cfg.PoolSize,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer reg.Close()

	ctx := context.Background()

	command, commandArgs := args[0], args[1:]
	switch command {
	case "list":
		return listLibraries(ctx, reg)
	case "show":
		if len(commandArgs) != 1 {
			return fmt.Errorf("usage: nlpm-registry show <library>")
		}
		return showLibrary(ctx, reg, commandArgs[0])
	case "files":
		if len(commandArgs) != 2 {
			return fmt.Errorf("usage: nlpm-registry files <library> <version>")
		}
		return listFiles(ctx, reg, commandArgs[0], commandArgs[1])
	case "cat":
		if len(commandArgs) != 2 && len(commandArgs) != 3 {
			return fmt.Errorf("usage: nlpm-registry cat <library> <version> [path]")
		}
		path := registry.RootPath
		if len(commandArgs) == 3 {
			path = commandArgs[2]
		}
		return catFile(ctx, reg, commandArgs[0], commandArgs[1], path)
	case "delete-version":
		if len(commandArgs) != 2 {
			return fmt.Errorf("usage: nlpm-registry delete-version <library> <version>")
		}
		if err := reg.DeleteVersion(ctx, commandArgs[0], commandArgs[1]); err != nil {
			return err
		}
		fmt.Printf("deleted %s@%s\n", commandArgs[0], commandArgs[1])
		return nil
	case "delete-library":
		if len(commandArgs) != 1 {
			return fmt.Errorf("usage: nlpm-registry delete-library <library>")
		}
		if err := reg.DeleteLibrary(ctx, commandArgs[0]); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", commandArgs[0])
		return nil
	default:
		pflag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func listLibraries(ctx context.Context, reg *registry.Registry) error {
	summaries, err := reg.Libraries(ctx)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tLATEST\tLANGUAGE\tFRAMEWORK\tUPDATED")
	for _, summary := range summaries {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
			summary.Library.Name,
			summary.LatestVersion,
			summary.Library.Language,
			summary.Library.Framework,
			summary.Library.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	return writer.Flush()
}

func showLibrary(ctx context.Context, reg *registry.Registry, name string) error {
	detail, err := reg.LibraryDetail(ctx, name)
	if err != nil {
		return err
	}

	library := detail.Library
	fmt.Printf("name:        %s\n", library.Name)
	if library.ImportName != "" {
		fmt.Printf("import name: %s\n", library.ImportName)
	}
	if library.Description != "" {
		fmt.Printf("description: %s\n", library.Description)
	}
	if library.Author != "" {
		fmt.Printf("author:      %s\n", library.Author)
	}
	if library.License != "" {
		fmt.Printf("license:     %s\n", library.License)
	}
	if keywords := library.KeywordList(); len(keywords) > 0 {
		fmt.Printf("keywords:    %s\n", strings.Join(keywords, ", "))
	}

	fmt.Println("versions:")
	if len(detail.Versions) == 0 {
		fmt.Println("  (none published)")
		return nil
	}
	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	for _, version := range detail.Versions {
		fmt.Fprintf(writer, "  %s\t%s\n",
			version.Version,
			version.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	return writer.Flush()
}

func listFiles(ctx context.Context, reg *registry.Registry, name, version string) error {
	view, err := reg.FileView(ctx, name, version, registry.RootPath)
	if err != nil {
		return err
	}
	if len(view.Paths) == 0 {
		fmt.Printf("%s@%s has no files\n", name, version)
		return nil
	}
	for _, path := range view.Paths {
		fmt.Println(path)
	}
	return nil
}

func catFile(ctx context.Context, reg *registry.Registry, name, version, path string) error {
	view, err := reg.FileView(ctx, name, version, path)
	if err != nil {
		return err
	}
	if view.SelectedPath == "" {
		fmt.Fprintf(os.Stderr, "%s@%s has no files\n", name, version)
		return nil
	}
	if view.Content.Kind == classify.Binary {
		fmt.Fprintf(os.Stderr, "%s (binary, no preview)\n", view.SelectedPath)
		return nil
	}
	fmt.Print(view.Content.Text)
	return nil
}
