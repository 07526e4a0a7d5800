// resxgen is a localization resource generator. It keeps per-language JSON
// dictionaries in sync and generates typed JavaScript/TypeScript accessors.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/dusted-go/logging/prettylog"
	"github.com/mattn/go-isatty"
	slogformatter "github.com/samber/slog-formatter"
	"github.com/spf13/cobra"

	"github.com/minios-linux/resxgen/config"
	"github.com/minios-linux/resxgen/editor"
	"github.com/minios-linux/resxgen/generate"
	"github.com/minios-linux/resxgen/i18n"
	"github.com/minios-linux/resxgen/langmeta"
	"github.com/minios-linux/resxgen/lockfile"
	"github.com/minios-linux/resxgen/orchestrate"
	"github.com/minios-linux/resxgen/reconcile"
	"github.com/minios-linux/resxgen/search"
	"github.com/minios-linux/resxgen/server"
	"github.com/minios-linux/resxgen/store"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

func logSection(title string) {
	fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, title, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
}

// initLogging installs the structured logger used by the packages.
// Colour is enabled only when stderr is a terminal.
func initLogging(verbose bool) {
	logLvl := slog.LevelWarn
	if verbose {
		logLvl = slog.LevelDebug
	}
	w := os.Stderr

	logger := slog.New(
		slogformatter.NewFormatterHandler(
			slogformatter.ErrorFormatter("error"),
			slogformatter.FormatByType(func(s []string) slog.Value {
				return slog.StringValue(strings.Join(s, ","))
			}),
		)(
			prettylog.New(&slog.HandlerOptions{Level: logLvl},
				prettylog.WithDestinationWriter(w),
				func() prettylog.Option {
					if isatty.IsTerminal(w.Fd()) {
						return prettylog.WithColor()
					}
					return func(_ *prettylog.Handler) {}
				}(),
			),
		),
	)
	slog.SetDefault(logger)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	configPath string
	verbose    bool
)

// loadStore reads the config file and creates missing folders.
func loadStore() (*store.Store, error) {
	if !fileExists(configPath) {
		return nil, fmt.Errorf(i18n.T("config file %s not found"), configPath)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	created, err := cfg.EnsureFolders()
	for _, dir := range created {
		logInfo(i18n.T("Created folder %s"), dir)
	}
	if err != nil {
		return nil, err
	}
	return store.New(cfg), nil
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	var auto bool

	root := &cobra.Command{
		Use:   "resxgen",
		Short: "Localization resource generator for JavaScript/TypeScript projects",
		Long: `resxgen keeps per-language JSON resource dictionaries in sync with the
default language and generates typed JavaScript/TypeScript accessor modules.

Without a subcommand resxgen starts the interactive mode. With --auto it
regenerates everything and exits.

Commands:
  regen     Reconcile all chunks and regenerate all modules
  new       Create a new chunk
  add       Add a key to a chunk
  find      Find keys by value
  status    Show configuration and translation statistics
  serve     Serve the query endpoints over HTTP`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogging(verbose)
			i18n.Init("")
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			if auto {
				return runRegen(cmd.Context(), s)
			}
			return newSession(cmd.Context(), s, promptuiPrompter{}).Run()
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.FileName, "Path to the configuration file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	root.Flags().BoolVar(&auto, "auto", false, "Regenerate everything and exit")

	root.AddCommand(
		newRegenCmd(),
		newNewCmd(),
		newAddCmd(),
		newFindCmd(),
		newStatusCmd(),
		newServeCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("resxgen version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// regen (reconcile + generate everything)
// ---------------------------------------------------------------------------

func newRegenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regen",
		Short: "Reconcile all chunks and regenerate all modules",
		Long: `Align every language dictionary with the default language (missing keys
are added as null, extra keys are deleted), then regenerate the per-language
modules, the facades and the declaration modules of every chunk.

A chunk that fails does not stop the others; the summary lists failures.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			return runRegen(cmd.Context(), s)
		},
	}

	return cmd
}

func runRegen(ctx context.Context, s *store.Store) error {
	sum, err := orchestrate.New(s).RegenerateAll(ctx)
	if sum == nil {
		return err
	}
	printSummary(sum)

	if failed := sum.Failed(); len(failed) > 0 {
		return fmt.Errorf(i18n.T("%d of %d chunks failed: %s"), len(failed), len(sum.Chunks), strings.Join(failed, ", "))
	}
	return err
}

func printSummary(sum *orchestrate.Summary) {
	logSection(i18n.T("Regenerating src files"))
	for _, cs := range sum.Chunks {
		if cs.Reconcile == nil {
			continue
		}
		if cs.Reconcile.DefaultResorted {
			logInfo(i18n.T("%s: sorted default language file"), cs.Chunk)
		}
		for _, lr := range cs.Reconcile.Languages {
			switch lr.Status {
			case reconcile.StatusCreated:
				logSuccess(i18n.T("%s.%s: created with %d keys"), cs.Chunk, lr.Lang, len(lr.Absent))
			case reconcile.StatusUpdated:
				logSuccess(i18n.T("%s.%s: updated"), cs.Chunk, lr.Lang)
				for _, k := range lr.Extra {
					logWarning(i18n.T("%s.%s: deleted extra key %q"), cs.Chunk, lr.Lang, k)
				}
				if len(lr.Absent) > 0 {
					logInfo(i18n.T("%s.%s: added absent keys %s"), cs.Chunk, lr.Lang, strings.Join(lr.Absent, ", "))
				}
			case reconcile.StatusFailed:
				logError("%s.%s: %v", cs.Chunk, lr.Lang, lr.Err)
			default:
				if lr.Resorted {
					logInfo(i18n.T("%s.%s: sorted"), cs.Chunk, lr.Lang)
				}
			}
		}
		if cs.ReconcileErr != nil && len(cs.Reconcile.Languages) == 0 {
			logError("%s: %v", cs.Chunk, cs.ReconcileErr)
		}
	}

	logSection(i18n.T("Regenerating dist files"))
	for _, cs := range sum.Chunks {
		switch {
		case cs.ReconcileErr != nil:
			logWarning(i18n.T("%s: skipped, reconciliation failed"), cs.Chunk)
		case cs.GenerateErr != nil:
			logError("%s: %v", cs.Chunk, cs.GenerateErr)
		case cs.Generate != nil && len(cs.Generate.Written) > 0:
			logSuccess("%s: %s", cs.Chunk, i18n.N("%d file written", "%d files written", len(cs.Generate.Written)))
		default:
			logInfo(i18n.T("%s: up to date"), cs.Chunk)
		}
	}

	ok, failed := sum.Counts()
	fmt.Fprintln(os.Stderr)
	if failed > 0 {
		logWarning(i18n.T("Done: %d succeeded, %d failed"), ok, failed)
		return
	}
	logSuccess(i18n.T("Done: %s"), i18n.N("%d chunk regenerated", "%d chunks regenerated", ok))
}

// ---------------------------------------------------------------------------
// new (create a chunk)
// ---------------------------------------------------------------------------

func newNewCmd() *cobra.Command {
	var regen bool

	cmd := &cobra.Command{
		Use:   "new <chunk>",
		Short: "Create a new chunk",
		Long: `Create an empty dictionary for every configured language.

The chunk name must be a valid JavaScript identifier. Fails when the
default-language file already exists.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			if err := editor.New(s).CreateChunk(cmd.Context(), args[0]); err != nil {
				return err
			}
			logSuccess(i18n.T("Chunk %s created"), args[0])
			if regen {
				return runRegen(cmd.Context(), s)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&regen, "regen", false, "Regenerate all chunks afterwards")
	return cmd
}

// ---------------------------------------------------------------------------
// add (add a key)
// ---------------------------------------------------------------------------

func newAddCmd() *cobra.Command {
	var (
		values map[string]string
		regen  bool
	)

	cmd := &cobra.Command{
		Use:   "add <chunk> <key>",
		Short: "Add a key to a chunk",
		Long: `Add a key to a chunk. Values are given per language with --value lang=text;
the default-language value is required.

Other languages are filled by the next regeneration (as null).`,
		Example: `  resxgen add greeting hello --value en=Hello --value ru=Привет --regen`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			def := s.Config().DefaultLang
			if strings.TrimSpace(values[def]) == "" {
				return fmt.Errorf(i18n.T("a value for the default language %s is required (--value %s=...)"), def, def)
			}
			if err := editor.New(s).AddKey(cmd.Context(), args[0], args[1], values); err != nil {
				return err
			}
			logSuccess(i18n.T("Key %s added to %s"), args[1], args[0])
			if regen {
				return runRegen(cmd.Context(), s)
			}
			return nil
		},
	}

	cmd.Flags().StringToStringVar(&values, "value", nil, "Value for a language (lang=text), repeatable")
	cmd.Flags().BoolVar(&regen, "regen", false, "Regenerate all chunks afterwards")
	return cmd
}

// ---------------------------------------------------------------------------
// find (search values)
// ---------------------------------------------------------------------------

func newFindCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "find <value>",
		Short: "Find keys by value",
		Long: `Find the keys whose value equals the given text, in every chunk and language.

By default only the first matching key of each file is listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			matches, err := search.New(s).Find(args[0], all)
			if err != nil {
				logWarning("%v", err)
			}
			if len(matches) == 0 {
				logInfo(i18n.T("No matches for %q"), args[0])
				return nil
			}
			for _, m := range matches {
				fmt.Printf("%s\t%s\t%s\t%s\n", m.Chunk, m.Lang, m.Key, m.Path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "List every matching key, not only the first per file")
	return cmd
}

// ---------------------------------------------------------------------------
// serve (HTTP query endpoints)
// ---------------------------------------------------------------------------

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the query endpoints over HTTP",
		Long: `Serve read-only JSON endpoints:

  GET /languages           configured languages
  GET /chunks              chunk names
  GET /chunks/{chunkName}  per-language dictionaries of a chunk`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = s.Config().ServerAddr
			}
			logInfo(i18n.T("Listening on %s (Ctrl+C to stop)"), addr)
			return server.New(s).ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: serverAddr from the config)")
	return cmd
}

// ---------------------------------------------------------------------------
// status (read-only: configuration + translation stats)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration and translation statistics",
		Long: `Show the configuration, the discovered chunks and per-language translation
progress, and list chunks whose sources changed since the last generation.
Does not modify any files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			return runStatus(s)
		},
	}

	return cmd
}

func runStatus(s *store.Store) error {
	cfg := s.Config()

	logSection(i18n.T("Project"))
	if cfg.Path() != "" {
		abs, _ := filepath.Abs(cfg.Path())
		fmt.Fprintf(os.Stderr, "  Config:     %s\n", abs)
	}
	fmt.Fprintf(os.Stderr, "  Sources:    %s\n", cfg.SrcFolder)
	fmt.Fprintf(os.Stderr, "  Output:     %s\n", cfg.DistFolder)
	fmt.Fprintf(os.Stderr, "  Namespace:  %s\n", cfg.JSNamespace)
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "  Languages:\n")
	for _, l := range cfg.Languages {
		marker := ""
		if l == cfg.DefaultLang {
			marker = " *"
		}
		fmt.Fprintf(os.Stderr, "    %s%s\n", langmeta.Label(l), marker)
	}

	chunks, err := s.ChunkNames()
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		fmt.Fprintln(os.Stderr)
		logInfo(i18n.T("No chunks found. Run 'resxgen new <chunk>' to create one."))
		return nil
	}

	lf, err := lockfile.Load(cfg.DistFolder)
	if err != nil {
		return err
	}

	logSection(i18n.T("Translation Statistics"))
	width := langColumnWidth(cfg.Languages)
	var stale []string
	for _, chunk := range chunks {
		dicts, err := s.LoadAll(chunk)
		if err != nil {
			logError("%s: %v", chunk, err)
			continue
		}
		total := dicts[cfg.DefaultLang].Len()
		fmt.Fprintf(os.Stderr, "\n%s (%s)\n", chunk, i18n.N("%d key", "%d keys", total))
		for _, lang := range cfg.Languages {
			d, ok := dicts[lang]
			if !ok {
				fmt.Fprintf(os.Stderr, "  %-*s  %s\n", width, lang, i18n.T("missing"))
				continue
			}
			_, translated, untranslated := d.Stats()
			percent := 100
			if total > 0 {
				percent = translated * 100 / total
			}
			fmt.Fprintf(os.Stderr, "  %-*s  %s  %d/%d", width, lang, progressBar(percent, 20), translated, total)
			if untranslated > 0 {
				fmt.Fprintf(os.Stderr, "  (%d untranslated)", untranslated)
			}
			fmt.Fprintln(os.Stderr)
		}
		if lf.SourcesChanged(chunk, generate.SourceChecksums(dicts)) {
			stale = append(stale, chunk)
		}
	}

	fmt.Fprintln(os.Stderr)
	modified := lf.Modified(cfg.DistFolder)
	if len(modified) > 0 {
		logWarning(i18n.T("Generated files edited or missing: %s"), strings.Join(modified, ", "))
	}
	if len(stale) > 0 || len(modified) > 0 {
		if len(stale) > 0 {
			sort.Strings(stale)
			logWarning(i18n.T("Changed since last generation: %s"), strings.Join(stale, ", "))
		}
		logInfo(i18n.T("Run 'resxgen regen' to update the generated modules."))
	} else {
		logSuccess(i18n.T("Generated modules are up to date (%s)"), lf.Summary())
	}
	return nil
}

// progressBar renders a coloured bar followed by the percentage.
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100

	color := colorRed
	switch {
	case percent >= 100:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}
	return color + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + colorReset + fmt.Sprintf(" %3d%%", percent)
}

func langColumnWidth(langs []string) int {
	w := 0
	for _, l := range langs {
		if len(l) > w {
			w = len(l)
		}
	}
	return w
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
