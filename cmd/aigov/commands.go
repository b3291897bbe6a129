package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"aigov/internal/config"
	"aigov/internal/gate"
	"aigov/internal/guard"
	"aigov/internal/report"
	"aigov/internal/scope"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// globals are the persistent flags shared by every command.
type globals struct {
	root       string
	configFile string
	color      string
	verbose    bool
}

// indexFlags override the index and scope settings of the config file.
type indexFlags struct {
	index       string
	schema      string
	baseRef     string
	strictOrder bool
	files       []string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "aigov",
		Short:         "Repository governance checks for the AI index",
		Long:          `aigov enforces an up-to-date, schema-valid ownership/invariant index for every changed package and keeps task-local AI artifacts out of version control.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&g.root, "root", ".", "repository root")
	pf.StringVar(&g.configFile, "config", "", "config file (default "+config.DefaultFile+", or $AIGOV_CONFIG)")
	pf.StringVar(&g.color, "color", "auto", "colorize output (auto|on|off)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "log progress to stderr")

	root.AddCommand(
		newCheckIndexCmd(g, stdout, stderr),
		newScopeCmd(g, stdout, stderr),
		newForbidCmd(g, stdout, stderr),
		newBudgetCmd(g, stdout, stderr),
		newVersionCmd(stdout),
	)
	return root
}

// setup loads the configuration and builds the reporter and logger.
func (g *globals) setup(stdout, stderr io.Writer) (config.Config, *report.Reporter, *log.Logger, error) {
	cfg, err := config.Load(g.root, g.configFile)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	colorize, err := report.ColorEnabled(g.color, asFile(stderr))
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	logger := log.New(io.Discard, "", 0)
	if g.verbose {
		logger = log.New(stderr, "aigov: ", 0)
	}
	return cfg, report.New(stdout, stderr, colorize), logger, nil
}

func asFile(w io.Writer) *os.File {
	f, _ := w.(*os.File)
	return f
}

func (f *indexFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.index, "index", "", "index file (overrides config)")
	fl.StringVar(&f.schema, "schema", "", "schema file (overrides config)")
	fl.StringVar(&f.baseRef, "base-ref", "", "diff base in CI (overrides $GITHUB_BASE_REF and config)")
	fl.StringSliceVar(&f.files, "files", nil, "comma-separated changed files; skips the git query")
}

func (f *indexFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if f.index != "" {
		cfg.Index.Path = f.index
	}
	if f.schema != "" {
		cfg.Index.Schema = f.schema
	}
	if f.baseRef != "" {
		cfg.Scope.BaseRef = f.baseRef
	}
	if cmd.Flags().Changed("strict-order") {
		cfg.Index.StrictOrder = f.strictOrder
	}
}

func (f *indexFlags) provider(cmd *cobra.Command, cfg config.Config) scope.ChangedFilesProvider {
	if cmd.Flags().Changed("files") {
		return scope.Static(f.files)
	}
	return scope.ForEnvironment(cfg.InCI(), cfg.Root, cfg.Scope.BaseRef)
}

func newCheckIndexCmd(g *globals, stdout, stderr io.Writer) *cobra.Command {
	f := &indexFlags{}
	cmd := &cobra.Command{
		Use:   "check-index",
		Short: "Validate the AI index and require owners/invariants on touched packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, rep, logger, err := g.setup(stdout, stderr)
			if err != nil {
				return err
			}
			f.apply(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return gate.CheckIndex(cmd.Context(), cfg, f.provider(cmd, cfg), rep, logger)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&f.strictOrder, "strict-order", false, "require package keys to be sorted")
	return cmd
}

func newScopeCmd(g *globals, stdout, stderr io.Writer) *cobra.Command {
	f := &indexFlags{}
	cmd := &cobra.Command{
		Use:   "scope",
		Short: "Print the packages touched by the current change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, rep, logger, err := g.setup(stdout, stderr)
			if err != nil {
				return err
			}
			f.apply(cmd, &cfg)
			touched, err := gate.Touched(cmd.Context(), cfg, f.provider(cmd, cfg), rep, logger)
			if err != nil {
				return err
			}
			for _, k := range touched {
				fmt.Fprintln(stdout, k)
			}
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newForbidCmd(g *globals, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "forbid",
		Short: "Fail if task-local working state or packet outputs exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, rep, _, err := g.setup(stdout, stderr)
			if err != nil {
				return err
			}
			return guard.RunForbid(cfg.Root, cfg.Forbid.Paths, rep)
		},
	}
}

func newBudgetCmd(g *globals, stdout, stderr io.Writer) *cobra.Command {
	var maxChunks, maxTokens int
	cmd := &cobra.Command{
		Use:   "packet-budget",
		Short: "Fail if the context packet exceeds its chunk or token budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, rep, _, err := g.setup(stdout, stderr)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-chunks") {
				cfg.Budget.MaxChunks = maxChunks
			}
			if cmd.Flags().Changed("max-tokens") {
				cfg.Budget.MaxTokens = maxTokens
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			b := guard.Budget{MaxChunks: cfg.Budget.MaxChunks, MaxTokens: cfg.Budget.MaxTokens}
			return guard.RunBudget(cfg.Path(cfg.Budget.Packet), b, rep)
		},
	}
	cmd.Flags().IntVar(&maxChunks, "max-chunks", 0, "maximum chunk markers (overrides config)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "maximum approximate tokens (overrides config)")
	return cmd
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the aigov version",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintln(stdout, "aigov "+version)
		},
	}
}
