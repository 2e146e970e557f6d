package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Planet-Detroit/ecocensus/internal/db"
	"github.com/Planet-Detroit/ecocensus/internal/model"
	"github.com/Planet-Detroit/ecocensus/internal/outlet"
	"github.com/Planet-Detroit/ecocensus/internal/store"
)

var seedFile string

// outletRoster is the YAML shape of the outlet seed file.
type outletRoster struct {
	Outlets []outletRow `yaml:"outlets"`
}

type outletRow struct {
	URL      string `yaml:"url"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

var seedCmd = &cobra.Command{
	Use:   "seed-outlets",
	Short: "Load or refresh the media outlet roster from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(seedFile)
		if err != nil {
			return eris.Wrapf(err, "read roster %s", seedFile)
		}
		var roster outletRoster
		if err := yaml.Unmarshal(data, &roster); err != nil {
			return eris.Wrapf(err, "parse roster %s", seedFile)
		}
		if len(roster.Outlets) == 0 {
			return eris.Errorf("roster %s lists no outlets", seedFile)
		}
		for _, o := range roster.Outlets {
			if o.URL == "" || o.Name == "" {
				return eris.Errorf("roster %s: every outlet needs url and name", seedFile)
			}
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		// Postgres gets a single bulk upsert; other drivers seed row by row.
		if pg, ok := st.(*store.PostgresStore); ok {
			rows := make([][]any, 0, len(roster.Outlets))
			for _, o := range roster.Outlets {
				rows = append(rows, []any{o.URL, o.Name, o.Category})
			}
			n, err := db.BulkUpsert(ctx, pg.Pool(), db.UpsertConfig{
				Table:        "outlets",
				Columns:      []string{"url", "name", "category"},
				ConflictKeys: []string{"url"},
			}, rows)
			if err != nil {
				return eris.Wrap(err, "seed outlets")
			}
			zap.L().Info("outlet roster seeded", zap.Int64("upserted", n))
			return nil
		}

		created, err := seedOutletRows(ctx, st, roster)
		if err != nil {
			return err
		}
		zap.L().Info("outlet roster seeded",
			zap.Int("outlets", len(roster.Outlets)),
			zap.Int("created", created),
		)
		return nil
	},
}

// seedOutletRows seeds one outlet at a time, resolving against the
// existing roster so outlets already in the store are left untouched.
// Returns how many were newly created.
func seedOutletRows(ctx context.Context, st store.Store, roster outletRoster) (int, error) {
	existing, err := st.ListOutlets(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "list outlets")
	}
	resolver := outlet.NewResolver(existing)

	before := resolver.Len()
	for _, o := range roster.Outlets {
		if _, err := resolver.Ensure(ctx, st, model.Outlet{URL: o.URL, Name: o.Name, Category: o.Category}); err != nil {
			return resolver.Len() - before, eris.Wrapf(err, "seed outlet %s", o.URL)
		}
	}
	return resolver.Len() - before, nil
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "outlets.yaml", "YAML outlet roster")
	rootCmd.AddCommand(seedCmd)
}
