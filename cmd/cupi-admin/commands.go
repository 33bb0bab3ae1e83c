package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/diwise/cupi-client/pkg/cupi/client"
	"github.com/diwise/cupi-client/pkg/cupi/entities"
	"github.com/diwise/cupi-client/pkg/cupi/fields"
	"github.com/diwise/cupi-client/pkg/cupi/kinds"
	"github.com/diwise/cupi-client/pkg/cupi/types"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/google/uuid"
	"github.com/iancoleman/strcase"
)

func execute(ctx context.Context, c *client.Client, flags FlagMap, args []string, out io.Writer) error {
	if len(args) < 2 {
		return fmt.Errorf("missing command or kind\n%s", usage)
	}

	verb, kind := args[0], args[1]
	args = args[2:]

	log := logging.GetFromContext(ctx)
	log.Debug("executing command", "command", verb, "kind", kind)

	repo, err := repositoryFor(ctx, c, kind, flags[userKey])
	if err != nil {
		return err
	}

	switch verb {
	case "list":
		return list(ctx, repo, flags, out)
	case "get":
		if len(args) != 1 {
			return fmt.Errorf("get requires an id or alias")
		}
		e, err := resolve(ctx, repo, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, e.String())
		return nil
	case "set":
		if len(args) < 2 {
			return fmt.Errorf("set requires an id or alias and at least one field=value")
		}
		return set(ctx, repo, args[0], args[1:], out)
	case "create":
		return create(ctx, repo, flags, args, out)
	case "delete":
		if len(args) != 1 {
			return fmt.Errorf("delete requires an id or alias")
		}
		e, err := resolve(ctx, repo, args[0])
		if err != nil {
			return err
		}
		err = repo.Delete(ctx, e.ID())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted %s\n", e.ID())
		return nil
	}

	return fmt.Errorf("unknown command %q\n%s", verb, usage)
}

func repositoryFor(ctx context.Context, c *client.Client, kind, user string) (*client.Repository, error) {
	switch strings.ToLower(kind) {
	case "users":
		return kinds.Users(c), nil
	case "usertemplates":
		return kinds.UserTemplates(c), nil
	case "distributionlists":
		return kinds.DistributionLists(c), nil
	case "tenants":
		return kinds.Tenants(c), nil
	}

	deviceType, ok := strings.CutSuffix(strings.ToLower(kind), "devices")
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", kind)
	}

	if user == "" {
		return nil, fmt.Errorf("%s require the --user flag", kind)
	}

	owner, err := resolve(ctx, kinds.Users(c), user)
	if err != nil {
		return nil, fmt.Errorf("failed to find user %q: %w", user, err)
	}

	return kinds.NotificationDevices(c, owner.ID(), kinds.DeviceType(deviceType))
}

// resolve treats arguments that parse as a uuid as object ids, and anything
// else as an alternate key.
func resolve(ctx context.Context, repo *client.Repository, idOrKey string) (*entities.Entity, error) {
	if _, err := uuid.Parse(idOrKey); err == nil {
		return repo.Get(ctx, idOrKey, "")
	}
	return repo.Get(ctx, "", idOrKey)
}

func list(ctx context.Context, repo *client.Repository, flags FlagMap, out io.Writer) error {
	params := []client.RequestDecoratorFunc{}
	if flags[queryClause] != "" {
		params = append(params, client.Query(flags[queryClause]))
	}
	if flags[sortClause] != "" {
		params = append(params, client.Sort(flags[sortClause]))
	}

	count, err := client.ForEach(ctx, repo,
		func(e *entities.Entity) string { return e.String() },
		func(s string) { fmt.Fprintln(out, s) },
		params...,
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%d %s\n", count, repo.Resource().Policy.Tag())
	return nil
}

func set(ctx context.Context, repo *client.Repository, idOrKey string, assignments []string, out io.Writer) error {
	e, err := resolve(ctx, repo, idOrKey)
	if err != nil {
		return err
	}

	values, err := parseAssignments(repo.Resource().Policy, assignments)
	if err != nil {
		return err
	}

	for _, f := range repo.Resource().Policy.Fields() {
		if v, ok := values[f.Name]; ok {
			err = e.Set(f.Name, v)
			if err != nil {
				return err
			}
		}
	}

	err = repo.Update(ctx, e, client.Refetch())
	if err != nil {
		return err
	}

	fmt.Fprintln(out, e.String())
	return nil
}

func create(ctx context.Context, repo *client.Repository, flags FlagMap, assignments []string, out io.Writer) error {
	values, err := parseAssignments(repo.Resource().Policy, assignments)
	if err != nil {
		return err
	}

	opts := []client.CreateOption{}
	if flags[templateAlias] != "" {
		opts = append(opts, client.Template(flags[templateAlias]))
	}

	result, err := repo.Create(ctx, nil, values, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "created %s\n", result.ID())
	return nil
}

// parseAssignments turns name=value arguments into fields. Names may be given
// as declared, in any case, or in kebab or snake case.
func parseAssignments(policy *fields.Policy, assignments []string) (types.Fields, error) {
	values := types.Fields{}

	for _, a := range assignments {
		name, value, ok := strings.Cut(a, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("expected field=value but got %q", a)
		}

		field, ok := fieldNamed(policy, name)
		if !ok {
			return nil, fmt.Errorf("%s has no field named %q", policy.Tag(), name)
		}

		values[field] = value
	}

	return values, nil
}

func fieldNamed(policy *fields.Policy, name string) (string, bool) {
	candidates := []string{name, strcase.ToCamel(name)}

	for _, candidate := range candidates {
		for _, f := range policy.Fields() {
			if strings.EqualFold(f.Name, candidate) {
				return f.Name, true
			}
		}
	}

	return "", false
}
