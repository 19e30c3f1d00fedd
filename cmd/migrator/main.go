// migrator transforms codebases into queryable call graphs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/henrythdu/GraphMigrator/internal/analysis"
	"github.com/henrythdu/GraphMigrator/internal/config"
	"github.com/henrythdu/GraphMigrator/internal/discover"
	"github.com/henrythdu/GraphMigrator/internal/export"
	"github.com/henrythdu/GraphMigrator/internal/git"
	"github.com/henrythdu/GraphMigrator/internal/graph"
	"github.com/henrythdu/GraphMigrator/internal/pipeline"
	"github.com/henrythdu/GraphMigrator/internal/storage"
)

var version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:     "migrator",
		Short:   "Transform codebases into queryable dependency graphs",
		Version: version,
	}
	cfgPath string
	dbPath  string
	verbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "migrator.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the graph database (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(callersCmd)
	rootCmd.AddCommand(calleesCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(statsCmd)
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, log, nil
}

func openStore(cfg *config.Config) (storage.GraphStore, error) {
	return storage.NewSQLiteStore(cfg.Storage.Path)
}

func loadGraph(ctx context.Context, cfg *config.Config) (*graph.Graph, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.LoadGraph(ctx)
}

var (
	scanLangs   []string
	scanWorkers int
	scanJSON    string
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a project and build its call graph",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		root := cfg.Project.Root
		if len(args) > 0 {
			root = args[0]
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return err
		}

		files, err := discover.Files(absRoot, pickLangs(cfg), cfg.Scan.Ignore)
		if err != nil {
			return fmt.Errorf("discover files: %w", err)
		}
		if len(files) == 0 {
			return fmt.Errorf("no parseable files under %s", absRoot)
		}

		workers := cfg.Scan.Workers
		if scanWorkers > 0 {
			workers = scanWorkers
		}

		fmt.Printf("Scanning %s (%d files)...\n", absRoot, len(files))
		start := time.Now()
		result, err := pipeline.Run(cmd.Context(), files, pipeline.Options{Workers: workers, Logger: log})
		if err != nil {
			return fmt.Errorf("build graph: %w", err)
		}
		g := result.Graph
		fmt.Printf("Graph built in %v: %d symbols, %d edges, %d unresolved calls, %d file failures.\n",
			time.Since(start).Round(time.Millisecond),
			len(g.Nodes), len(g.Edges), len(g.Unresolved), len(g.Failures))

		store, err := openStore(cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()
		if err := store.SaveGraph(cmd.Context(), g); err != nil {
			return fmt.Errorf("save graph: %w", err)
		}
		fmt.Printf("Saved to %s.\n", cfg.Storage.Path)

		if scanJSON != "" {
			if err := export.Save(scanJSON, export.BuildDocument(g, absRoot)); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Printf("Exported to %s.\n", scanJSON)
		}
		return nil
	},
}

func pickLangs(cfg *config.Config) []string {
	if len(scanLangs) > 0 {
		return scanLangs
	}
	return cfg.Scan.Languages
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored graph as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		g, err := loadGraph(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("load graph: %w", err)
		}
		doc := export.BuildDocument(g, cfg.Project.Root)
		if exportOut == "" || exportOut == "-" {
			return export.Write(os.Stdout, doc)
		}
		if err := export.Save(exportOut, doc); err != nil {
			return err
		}
		fmt.Printf("Exported to %s.\n", exportOut)
		return nil
	},
}

var callersCmd = &cobra.Command{
	Use:   "callers NAME",
	Short: "List call sites targeting a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printEdges(cmd, args[0], true)
	},
}

var calleesCmd = &cobra.Command{
	Use:   "callees NAME",
	Short: "List call sites made by a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printEdges(cmd, args[0], false)
	},
}

func printEdges(cmd *cobra.Command, name string, inbound bool) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	g, err := loadGraph(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}

	matches := g.FindByName(name)
	if len(matches) == 0 {
		return fmt.Errorf("no symbol named %q", name)
	}
	for _, sym := range matches {
		label := string(sym.Kind)
		if sym.Shadowed {
			label += ", shadowed"
		}
		fmt.Printf("%s (%s) %s:%d\n", sym.Name, label, sym.File, sym.Span.StartLine)

		var edges []graph.CallEdge
		if inbound {
			edges = g.CallersOf(sym.ID)
		} else {
			edges = g.CalleesOf(sym.ID)
		}
		for _, e := range edges {
			otherID := e.Caller
			if !inbound {
				otherID = e.Callee
			}
			if other, ok := g.Node(otherID); ok {
				fmt.Printf("  %s  (%s:%d)\n", other.Key(), e.File, e.Span.StartLine)
			}
		}
		if len(edges) == 0 {
			fmt.Println("  (none)")
		}
	}
	return nil
}

var impactBase string

var impactCmd = &cobra.Command{
	Use:   "impact",
	Short: "Report symbols affected by uncommitted or recent changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		changes, err := git.ChangedFiles(cfg.Project.Root, impactBase)
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			fmt.Println("No changes detected.")
			return nil
		}
		g, err := loadGraph(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("load graph: %w", err)
		}

		report := analysis.NewAnalyzer(g).AnalyzeImpact(changes)
		fmt.Printf("%d symbols directly affected:\n", len(report.DirectlyAffected))
		for _, sym := range report.DirectlyAffected {
			fmt.Printf("  %s\n", sym.Key())
		}
		fmt.Printf("%d symbols indirectly affected (transitive callers):\n", len(report.IndirectlyAffected))
		for _, sym := range report.IndirectlyAffected {
			fmt.Printf("  %s\n", sym.Key())
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show stored graph statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		g, err := loadGraph(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("load graph: %w", err)
		}

		fmt.Printf("Symbols:    %d (%d shadowed)\n", len(g.Nodes), g.ShadowedCount())
		fmt.Printf("Call edges: %d\n", len(g.Edges))
		fmt.Printf("Unresolved: %d\n", len(g.Unresolved))
		for reason, n := range g.ReasonCounts() {
			fmt.Printf("  %-10s %d\n", reason, n)
		}
		fmt.Printf("Failures:   %d\n", len(g.Failures))
		return nil
	},
}

func init() {
	scanCmd.Flags().StringSliceVarP(&scanLangs, "lang", "l", nil, "Languages to include (python, go)")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "Parallel workers (default GOMAXPROCS)")
	scanCmd.Flags().StringVar(&scanJSON, "json", "", "Also write a JSON export to this path")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path (default stdout)")
	impactCmd.Flags().StringVar(&impactBase, "base", "HEAD", "Git ref to diff against")
}
