package main

import (
	"context"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/spf13/pflag"
)

type FlagType int
type FlagMap map[FlagType]string

const (
	configPath FlagType = iota
	serverName

	queryClause
	sortClause
	templateAlias
	userKey

	logFormat
)

func parseFlags(ctx context.Context, args []string) (FlagMap, []string, error) {
	flags := FlagMap{}
	values := map[FlagType]*string{}

	flagSet := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	values[configPath] = flagSet.StringP("config", "c", env.GetVariableOrDefault(ctx, "CUPI_CONFIG", "cupi.yaml"), "path to the server configuration file")
	values[serverName] = flagSet.StringP("server", "s", env.GetVariableOrDefault(ctx, "CUPI_SERVER", ""), "name of the configured server to use")
	values[queryClause] = flagSet.StringP("query", "q", "", "filter clause for list, e.g. \"(alias startswith sa)\"")
	values[sortClause] = flagSet.String("sort", "", "sort clause for list, e.g. \"(alias asc)\"")
	values[templateAlias] = flagSet.StringP("template", "t", "", "create from the user template with this alias")
	values[userKey] = flagSet.StringP("user", "u", "", "id or alias of the user that owns the notification devices")
	values[logFormat] = flagSet.String("log-format", env.GetVariableOrDefault(ctx, "LOG_FORMAT", "json"), "log output format")

	err := flagSet.Parse(args)
	if err != nil {
		return nil, nil, err
	}

	for f, v := range values {
		flags[f] = *v
	}

	return flags, flagSet.Args(), nil
}
