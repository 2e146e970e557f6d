package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Planet-Detroit/ecocensus/internal/backend"
	"github.com/Planet-Detroit/ecocensus/internal/collector"
	"github.com/Planet-Detroit/ecocensus/internal/model"
	"github.com/Planet-Detroit/ecocensus/internal/store"
	anthropicpkg "github.com/Planet-Detroit/ecocensus/pkg/anthropic"
	"github.com/Planet-Detroit/ecocensus/pkg/gdelt"
	"github.com/Planet-Detroit/ecocensus/pkg/google"
)

// testRunLimit caps a --test run to a handful of organizations.
const testRunLimit = 5

var (
	collectBackends []string
	collectLimit    int
	collectOffset   int
	collectTest     bool
	collectAllOrgs  bool
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run a media mention collection pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		names := collectBackends
		if len(names) == 0 {
			names = cfg.Collect.Backends
		}
		backends, err := buildBackends(ctx, st, names)
		if err != nil {
			return err
		}

		limit := collectLimit
		if collectTest {
			limit = testRunLimit
		}
		sel := collector.Selection{
			Limit:         limit,
			Offset:        collectOffset,
			PrioritizeEIN: !collectAllOrgs,
		}

		c := collector.New(st, backends,
			collector.WithPerBackendLimit(cfg.Collect.PerBackendLimit),
			collector.WithDelays(cfg.Collect.BackendDelay, cfg.Collect.OrgDelay),
			collector.WithProgress(os.Stdout),
		)

		collector.WriteBanner(os.Stdout, names)
		res, err := c.Run(ctx, sel)
		if err != nil {
			if res != nil {
				collector.WriteSummary(os.Stdout, res)
			}
			return eris.Wrap(err, "collection run")
		}
		collector.WriteSummary(os.Stdout, res)

		zap.L().Info("collect finished",
			zap.String("outcome", res.Outcome.String()),
			zap.Int64("inserted", res.Stats.MentionsInserted),
			zap.Int64("errors", res.Stats.Errors),
		)
		return nil
	},
}

// buildBackends constructs the requested search backends, validating the
// credentials each one needs.
func buildBackends(ctx context.Context, st store.Store, names []string) ([]backend.Backend, error) {
	if len(names) == 0 {
		return nil, eris.New("no search backends configured")
	}

	var backends []backend.Backend
	for _, name := range names {
		switch name {
		case "gdelt":
			client := gdelt.NewClient(
				gdelt.WithBaseURL(cfg.GDELT.BaseURL),
				gdelt.WithRateLimit(cfg.GDELT.RatePerSec),
			)
			backends = append(backends, backend.NewGDELT(client, cfg.Collect.QueryContext))

		case "google":
			if cfg.Google.Key == "" || cfg.Google.EngineID == "" {
				return nil, eris.New("google API key and engine ID are required (ECOCENSUS_GOOGLE_KEY, ECOCENSUS_GOOGLE_ENGINE_ID)")
			}
			client := google.NewClient(cfg.Google.Key, cfg.Google.EngineID)
			backends = append(backends, backend.NewGoogle(client, cfg.Collect.QueryContext,
				backend.WithDailyQuota(cfg.Google.DailyQuota)))

		case "agent":
			if cfg.Anthropic.Key == "" {
				return nil, eris.New("anthropic API key is required (ECOCENSUS_ANTHROPIC_KEY)")
			}
			domains, err := agentDomains(ctx, st)
			if err != nil {
				return nil, err
			}
			client := anthropicpkg.NewClient(cfg.Anthropic.Key)
			backends = append(backends, backend.NewAgent(client, cfg.Anthropic.Model, domains,
				backend.WithPerDomain(cfg.Collect.AgentPerDomain),
				backend.WithSearchDelay(cfg.Collect.AgentSearchDelay),
				backend.WithMaxTokens(cfg.Anthropic.MaxTokens)))

		default:
			return nil, eris.Errorf("unknown backend: %s", name)
		}
	}
	return backends, nil
}

// agentDomains resolves the outlet domains the agent backend searches:
// the configured list, or every outlet in the store.
func agentDomains(ctx context.Context, st store.Store) ([]string, error) {
	if len(cfg.Collect.AgentDomains) > 0 {
		return cfg.Collect.AgentDomains, nil
	}
	outlets, err := st.ListOutlets(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "load outlet domains")
	}
	if len(outlets) == 0 {
		return nil, eris.New("agent backend needs outlet domains: configure collect.agent_domains or seed outlets first")
	}
	domains := make([]string, 0, len(outlets))
	for _, o := range outlets {
		domains = append(domains, model.DomainKey(o.URL))
	}
	return domains, nil
}

func init() {
	collectCmd.Flags().StringArrayVar(&collectBackends, "backend", nil, "search backend to use: gdelt, google, or agent (repeatable; default from config)")
	collectCmd.Flags().IntVar(&collectLimit, "limit", 0, "max organizations to process (0 = all)")
	collectCmd.Flags().IntVar(&collectOffset, "offset", 0, "organizations to skip, for resuming a halted run")
	collectCmd.Flags().BoolVar(&collectTest, "test", false, "test run against the first 5 organizations")
	collectCmd.Flags().BoolVar(&collectAllOrgs, "all-orgs", false, "include organizations without an EIN")
	rootCmd.AddCommand(collectCmd)
}
