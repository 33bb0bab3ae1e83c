package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/diwise/cupi-client/internal/pkg/config"
	"github.com/diwise/cupi-client/pkg/cupi/client"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/spf13/pflag"
)

const (
	appName string = "cupi-admin"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	flags, positional, err := parseFlags(ctx, args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(out, usage)
			return nil
		}
		return err
	}

	appVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(ctx, appName, appVersion, flags[logFormat])
	defer cleanup()

	cfg, err := loadConfiguration(flags[configPath])
	if err != nil {
		return err
	}

	server, err := cfg.Server(flags[serverName])
	if err != nil {
		return err
	}

	log.Debug("using server", "name", server.Name, "endpoint", server.Endpoint)

	c := client.New(server.Endpoint, server.ClientOptions(ctx)...)

	return execute(ctx, c, flags, positional, out)
}

func loadConfiguration(path string) (*config.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open configuration file: %w", err)
	}
	defer f.Close()

	return config.LoadConfiguration(f)
}

const usage string = `usage: cupi-admin [flags] <command> <kind> [args]

commands:
  list   <kind>                            list entities, optionally filtered with --query
  get    <kind> <id|alias>                 show a single entity
  set    <kind> <id|alias> field=value...  update fields of an entity
  create <kind> field=value...             create a new entity
  delete <kind> <id|alias>                 delete an entity

kinds:
  users, usertemplates, distributionlists, tenants,
  phonedevices, pagerdevices, smtpdevices, htmldevices (require --user)`
