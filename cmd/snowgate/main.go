package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/snowgate-io/snowgate-ce/internal/auth"
	"github.com/snowgate-io/snowgate-ce/internal/cache"
	"github.com/snowgate-io/snowgate-ce/internal/catalog"
	"github.com/snowgate-io/snowgate-ce/internal/catalog/analytics"
	"github.com/snowgate-io/snowgate-ce/internal/catalog/snowgateway"
	"github.com/snowgate-io/snowgate-ce/internal/config"
	"github.com/snowgate-io/snowgate-ce/internal/mcp"
	"github.com/snowgate-io/snowgate-ce/internal/scheduler"
	"github.com/snowgate-io/snowgate-ce/internal/server"
	"github.com/snowgate-io/snowgate-ce/internal/snow"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configFlag          string
	windowFlag          string
	categoryFlag        string
	includeInactiveFlag bool
	familiesFlag        []string
)

var rootCmd = &cobra.Command{
	Use:   "snowgate",
	Short: "SnowGate - ServiceNow MCP bridge and catalog optimizer",
	Long: `SnowGate Command Line Interface

Bridges ServiceNow to MCP clients and analyzes service catalogs for
optimization opportunities: unused items, abandoned carts, slow
fulfillment and structural problems.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP bridge server",
	RunE:  runServe,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Print per-item usage metrics for a time window",
	RunE:  runAnalyze,
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Print optimization recommendations",
	RunE:  runRecommend,
}

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Print structural findings for the catalog taxonomy",
	RunE:  runStructure,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("SnowGate %s\n", rootCmd.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (default: environment only)")

	for _, cmd := range []*cobra.Command{analyzeCmd, recommendCmd} {
		cmd.Flags().StringVar(&windowFlag, "window", catalog.WindowLast90Days, "Analysis window: last_7_days, last_30_days, last_90_days, last_year")
		cmd.Flags().StringVar(&categoryFlag, "category", "", "Restrict to one category sys_id")
	}
	analyzeCmd.Flags().BoolVar(&includeInactiveFlag, "include-inactive", false, "Include inactive items")
	structureCmd.Flags().BoolVar(&includeInactiveFlag, "include-inactive", false, "Include inactive categories and items")
	recommendCmd.Flags().StringSliceVar(&familiesFlag, "types", nil, "Restrict to recommendation types (e.g. low_usage,inactive_items)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(structureCmd)
	rootCmd.AddCommand(versionCmd)
}

// bridge holds everything the commands share once the config is loaded.
type bridge struct {
	cfg    *config.Config
	client *snow.Client
	engine *analytics.Engine
	redis  *cache.RedisCache
	logger *log.Logger
}

func newBridge() (*bridge, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}

	logger := log.New(os.Stderr, "snowgate ", log.LstdFlags)

	authManager, err := auth.NewManager(cfg.ServiceNow.Auth, cfg.ServiceNow.InstanceURL)
	if err != nil {
		return nil, err
	}
	client := snow.NewClient(cfg.ServiceNow.InstanceURL, authManager, cfg.ServiceNow.Timeout)

	var gw catalog.Gateway = snowgateway.New(client, logger)
	var redis *cache.RedisCache
	if cfg.Cache.Enabled {
		redis, err = cache.NewRedisCache(cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		gw = cache.NewGateway(gw, redis, logger)
	}

	engine, err := analytics.NewEngine(gw, cfg.Analysis, analytics.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &bridge{cfg: cfg, client: client, engine: engine, redis: redis, logger: logger}, nil
}

func (b *bridge) close() {
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			b.logger.Printf("closing redis: %v", err)
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}
	defer b.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if b.cfg.Scheduler.Enabled {
		svc, err := scheduler.NewService(b.engine, scheduler.Config{
			Spec:   b.cfg.Scheduler.Spec,
			Window: b.cfg.Scheduler.Window,
		}, b.logger)
		if err != nil {
			return err
		}
		svc.Start()
		defer svc.Stop()
	}

	srv := server.New(b.cfg.Server, mcp.NewServer(b.client, b.engine, b.logger), b.logger)
	return srv.Run(ctx)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}
	defer b.close()

	report, err := b.engine.AnalyzeUsage(cmd.Context(), analytics.UsageParams{
		Window:          windowFlag,
		CategoryID:      categoryFlag,
		IncludeInactive: includeInactiveFlag,
	})
	if err != nil {
		return err
	}
	return printJSON(report)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}
	defer b.close()

	var families []catalog.RuleFamily
	for _, name := range familiesFlag {
		families = append(families, catalog.RuleFamily(name))
	}
	report, err := b.engine.Recommendations(cmd.Context(), analytics.RecommendationParams{
		Window:     windowFlag,
		CategoryID: categoryFlag,
		Families:   families,
	})
	if err != nil {
		return err
	}
	return printJSON(report)
}

func runStructure(cmd *cobra.Command, args []string) error {
	b, err := newBridge()
	if err != nil {
		return err
	}
	defer b.close()

	report, err := b.engine.AnalyzeStructure(cmd.Context(), analytics.StructureParams{
		IncludeInactive: includeInactiveFlag,
	})
	if err != nil {
		return err
	}
	return printJSON(report)
}

func printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
