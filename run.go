package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/goccy/go-yaml"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Yamashou/gqlblock/assemble"
	"github.com/Yamashou/gqlblock/check"
	"github.com/Yamashou/gqlblock/client"
	"github.com/Yamashou/gqlblock/config"
	"github.com/Yamashou/gqlblock/registry"
	"github.com/Yamashou/gqlblock/schema"
	"github.com/Yamashou/gqlblock/workspace"
)

const queryConcurrency = 4

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "config file",
		Value:   "gqlblock.yml",
		Sources: cli.EnvVars("GQLBLOCK_CONFIG"),
	}
}

func workspaceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "workspace",
		Aliases:  []string{"w"},
		Usage:    "workspace file with saved queries",
		Required: true,
	}
}

func nameFlag() cli.Flag {
	return &cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "only this query"}
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "gqlblock",
		Usage:   "Inspect schemas and assemble saved block queries",
		Version: version,
		Writer:  out,
		Commands: []*cli.Command{
			{
				Name:  "templates",
				Usage: "Print the block templates of an instance as YAML",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "instance", Aliases: []string{"i"}, Usage: "instance id", Required: true},
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "type to list templates of (default: the root)"},
				},
				Action: runTemplates,
			},
			{
				Name:   "assemble",
				Usage:  "Print the query text of saved queries",
				Flags:  []cli.Flag{configFlag(), workspaceFlag(), nameFlag()},
				Action: runAssemble,
			},
			{
				Name:   "query",
				Usage:  "Execute saved queries and print their data as JSON",
				Flags:  []cli.Flag{configFlag(), workspaceFlag(), nameFlag()},
				Action: runQuery,
			},
		},
	}
}

// env is the state shared by every command: the loaded config and a
// registry holding the schema of each instance.
type env struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *registry.Registry
	checker  *check.Checker
}

func setup(ctx context.Context, configFile string) (*env, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	logger, err := cfg.Log.Logger()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	reg, err := registry.New(registry.DefaultFetcher{}, registry.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	for _, instance := range cfg.Instances {
		headers, err := instance.HeadersJSON()
		if err != nil {
			return nil, err
		}
		if err := reg.Register(ctx, instance.ID, instance.EndpointURL(), headers); err != nil {
			return nil, err
		}
	}
	reg.Wait()

	for _, instance := range cfg.Instances {
		if _, ok := reg.Schema(instance.EndpointURL()); !ok {
			logger.Warn("schema is not available", zap.String("instance", instance.ID))
		}
	}

	return &env{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		checker:  check.New(reg, check.WithLogger(logger), check.WithLocker(reg.Locker())),
	}, nil
}

func runTemplates(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(ctx, cmd.String("config"))
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()

	id := cmd.String("instance")
	endpoint, ok := e.registry.Endpoint(id)
	if !ok {
		return fmt.Errorf("unknown instance %q", id)
	}
	if _, ok := e.registry.Schema(endpoint); !ok {
		return fmt.Errorf("schema of instance %q is not available", id)
	}

	typeName := cmd.String("type")
	if typeName == "" {
		typeName = schema.RootTypeName
	}

	templates := e.registry.Templates(endpoint, typeName)
	if templates == nil {
		return fmt.Errorf("type %q has no templates", typeName)
	}

	b, err := yaml.Marshal(templates)
	if err != nil {
		return fmt.Errorf("failed to encode templates: %w", err)
	}
	_, err = cmd.Root().Writer.Write(b)

	return err
}

func selectQueries(w *workspace.Workspace, name string) ([]*workspace.Query, error) {
	if name == "" {
		return w.Queries, nil
	}

	q, ok := w.Query(name)
	if !ok {
		return nil, fmt.Errorf("query %q not found", name)
	}

	return []*workspace.Query{q}, nil
}

func loadQueries(e *env, cmd *cli.Command) ([]string, []*workspace.Query, error) {
	w, err := workspace.Load(cmd.String("workspace"))
	if err != nil {
		return nil, nil, err
	}

	queries, err := selectQueries(w, cmd.String("name"))
	if err != nil {
		return nil, nil, err
	}

	var (
		texts []string
		errs  []error
	)
	for _, q := range queries {
		slot, err := q.Restore(e.registry, e.checker)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		texts = append(texts, assemble.Operation(slot))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, nil, err
	}

	return texts, queries, nil
}

func runAssemble(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(ctx, cmd.String("config"))
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()

	texts, queries, err := loadQueries(e, cmd)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	for i, q := range queries {
		if _, err := fmt.Fprintf(out, "# %s\n%s\n", q.Name, texts[i]); err != nil {
			return err
		}
	}

	return nil
}

func runQuery(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(ctx, cmd.String("config"))
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()

	texts, queries, err := loadQueries(e, cmd)
	if err != nil {
		return err
	}

	results := make([]map[string]any, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(queryConcurrency)
	for i, q := range queries {
		g.Go(func() error {
			instance, ok := e.cfg.Instance(q.Instance)
			if !ok || instance.Endpoint == nil {
				return fmt.Errorf("query %q: instance %q has no remote endpoint", q.Name, q.Instance)
			}

			headersJSON, err := instance.HeadersJSON()
			if err != nil {
				return err
			}
			header, err := client.ParseHeaders(headersJSON)
			if err != nil {
				return err
			}

			c := client.NewClient(instance.Endpoint.URL, client.WithHTTPHeader(header))
			if err := c.Post(gctx, "", texts[i], nil, &results[i]); err != nil {
				return fmt.Errorf("query %q: %w", q.Name, err)
			}
			e.logger.Debug("query executed", zap.String("query", q.Name))

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.Root().Writer
	for i, q := range queries {
		b, err := json.Marshal(results[i], json.Deterministic(true), jsontext.WithIndent("  "))
		if err != nil {
			return fmt.Errorf("query %q: failed to encode data: %w", q.Name, err)
		}
		if _, err := fmt.Fprintf(out, "# %s\n%s\n", q.Name, b); err != nil {
			return err
		}
	}

	return nil
}
