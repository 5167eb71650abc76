package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/wms-platform/location-directive-service/internal/application"
	"github.com/wms-platform/location-directive-service/internal/domain"
	"github.com/wms-platform/location-directive-service/internal/infrastructure/catalog"
	"github.com/wms-platform/location-directive-service/internal/infrastructure/memory"
	"github.com/wms-platform/location-directive-service/shared/pkg/logging"
)

type rootOptions struct {
	catalogPath   string
	priorityOrder string
	jsonOutput    bool
	verbose       bool
}

type queryOptions struct {
	operation  string
	item       string
	quantity   int
	reference  string
	params     map[string]string
	candidates []string
}

func (o queryOptions) command() application.LocationQueryCommand {
	// values stay strings: constraints coerce numeric and boolean text themselves
	params := make(map[string]any, len(o.params))
	for k, v := range o.params {
		params[k] = v
	}
	return application.LocationQueryCommand{
		OperationType:     o.operation,
		SKU:               o.item,
		Quantity:          o.quantity,
		ReferenceLocation: o.reference,
		Parameters:        params,
		Candidates:        o.candidates,
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "directivectl",
		Short:         "Inspect location directives and try selections offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.catalogPath, "catalog", "c", "directives.yaml", "directive catalog file")
	root.PersistentFlags().StringVar(&opts.priorityOrder, "order", string(domain.PriorityAscending), "directive priority order (ascending|descending)")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output JSON")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log engine activity to stderr")

	root.AddCommand(validateCmd(opts))
	root.AddCommand(selectCmd(opts))
	root.AddCommand(rankCmd(opts))
	root.AddCommand(evaluateCmd(opts))
	return root
}

// loadService seeds in-memory repositories from the catalog
func loadService(ctx context.Context, cmd *cobra.Command, opts *rootOptions) (*application.LocationDirectiveService, error) {
	file, err := catalog.LoadFile(opts.catalogPath)
	if err != nil {
		return nil, err
	}
	order, err := domain.ParsePriorityOrder(opts.priorityOrder)
	if err != nil {
		return nil, err
	}

	logger := logging.NewNop()
	if opts.verbose {
		cfg := logging.DefaultConfig("directivectl")
		cfg.Level = logging.LevelDebug
		cfg.Output = cmd.ErrOrStderr()
		logger = logging.New(cfg)
	}

	directives := memory.NewLocationDirectiveRepository()
	attributes := memory.NewLocationAttributeRepository(nil)
	if _, err := catalog.Seed(ctx, file, directives, attributes, logger); err != nil {
		return nil, err
	}
	return application.NewLocationDirectiveService(directives, attributes, nil, logger,
		application.WithEvaluator(domain.NewDirectiveEvaluator(domain.WithPriorityOrder(order))),
	), nil
}

func addQueryFlags(cmd *cobra.Command, q *queryOptions) {
	cmd.Flags().StringVarP(&q.operation, "operation", "o", "", "operation type (pick|put|count|move|replenish)")
	cmd.Flags().StringVar(&q.item, "item", "", "SKU")
	cmd.Flags().IntVar(&q.quantity, "quantity", 1, "quantity")
	cmd.Flags().StringVar(&q.reference, "reference", "", "reference location, e.g. A-01-1")
	cmd.Flags().StringToStringVar(&q.params, "param", nil, "query parameter key=value (repeatable)")
	cmd.Flags().StringSliceVar(&q.candidates, "candidate", nil, "candidate location (repeatable)")
	_ = cmd.MarkFlagRequired("operation")
	_ = cmd.MarkFlagRequired("item")
}

func validateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every directive of the catalog for configuration issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := loadService(ctx, cmd, opts)
			if err != nil {
				return err
			}
			directives, err := svc.ListDirectives(ctx, application.ListDirectivesQuery{})
			if err != nil {
				return err
			}

			results := make([]*application.ValidationDTO, 0, len(directives))
			invalid := 0
			for _, d := range directives {
				res, err := svc.ValidateDirective(ctx, d.DirectiveID)
				if err != nil {
					return err
				}
				if !res.Valid {
					invalid++
				}
				results = append(results, res)
			}

			if opts.jsonOutput {
				if err := printJSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			} else {
				tw := newTable(cmd.OutOrStdout())
				tw.AppendHeader(table.Row{"Directive", "Name", "Strategy", "Valid", "Issues"})
				for i, d := range directives {
					tw.AppendRow(table.Row{d.DirectiveID, d.Name, d.Strategy, results[i].Valid, strings.Join(results[i].Issues, "; ")})
				}
				tw.Render()
			}

			if invalid > 0 {
				return fmt.Errorf("%d of %d directives have issues", invalid, len(directives))
			}
			return nil
		},
	}
}

func selectCmd(opts *rootOptions) *cobra.Command {
	q := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Select the optimal location for a query",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := loadService(ctx, cmd, opts)
			if err != nil {
				return err
			}
			selection, err := svc.SelectOptimalLocation(ctx, q.command())
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), selection)
			}
			tw := newTable(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Found", "Location", "Directive", "Strategy", "Tried"})
			tw.AppendRow(table.Row{selection.Found, selection.Location, selection.DirectiveName, selection.Strategy, selection.DirectivesTried})
			tw.Render()
			for _, f := range selection.Faults {
				fmt.Fprintf(cmd.ErrOrStderr(), "strategy %s of directive %s failed: %s\n", f.Strategy, f.DirectiveID, f.Error)
			}
			return nil
		},
	}
	addQueryFlags(cmd, q)
	return cmd
}

func rankCmd(opts *rootOptions) *cobra.Command {
	q := &queryOptions{}
	var limit int
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank candidate locations by score",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := loadService(ctx, cmd, opts)
			if err != nil {
				return err
			}
			ranked, err := svc.FindBestLocations(ctx, application.FindBestLocationsCommand{
				Query:      q.command(),
				MaxResults: limit,
			})
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), ranked)
			}
			tw := newTable(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"#", "Location", "Score"})
			for i, r := range ranked {
				tw.AppendRow(table.Row{i + 1, r.Location, r.Score})
			}
			tw.Render()
			return nil
		},
	}
	addQueryFlags(cmd, q)
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of locations")
	return cmd
}

func evaluateCmd(opts *rootOptions) *cobra.Command {
	q := &queryOptions{}
	var location string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Show how every applicable directive judges one location",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := loadService(ctx, cmd, opts)
			if err != nil {
				return err
			}
			eval, err := svc.EvaluateLocation(ctx, application.EvaluateLocationCommand{
				Query:    q.command(),
				Location: location,
			})
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), eval)
			}
			tw := newTable(cmd.OutOrStdout())
			tw.SetTitle(fmt.Sprintf("%s suitable=%t score=%g", eval.Location, eval.Suitable, eval.Score))
			tw.AppendHeader(table.Row{"Directive", "Strategy", "Result", "Score", "Violations"})
			for _, o := range eval.Outcomes {
				tw.AppendRow(table.Row{o.Name, o.Strategy, o.Result, o.Score, strings.Join(o.Violations, "; ")})
			}
			tw.Render()
			return nil
		},
	}
	addQueryFlags(cmd, q)
	cmd.Flags().StringVarP(&location, "location", "l", "", "location to evaluate")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	return tw
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
