// mclocalizer translates Minecraft mod, quest and guide book localization
// files through an OpenAI-compatible chat completion endpoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"github.com/minios-linux/mclocalizer/codec"
	"github.com/minios-linux/mclocalizer/config"
	"github.com/minios-linux/mclocalizer/content"
	"github.com/minios-linux/mclocalizer/i18n"
	"github.com/minios-linux/mclocalizer/mclocale"
	"github.com/minios-linux/mclocalizer/resourcepack"
	"github.com/minios-linux/mclocalizer/settings"
	"github.com/minios-linux/mclocalizer/source"
	"github.com/minios-linux/mclocalizer/store"
	"github.com/minios-linux/mclocalizer/translate"
	"github.com/minios-linux/mclocalizer/tree"
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

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir string
	verbose bool
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mclocalizer",
		Short: "Translate Minecraft mod and modpack localization files",
		Long: `mclocalizer translates Minecraft localization files (.lang, .json, .snbt)
through an OpenAI-compatible chat completion endpoint.

Translated mod, BetterQuesting and Patchouli files are written into a
resource pack under resourcepacks/. Quest files go to the KubeJS and FTB
Quests lang directories of the game directory; file mode writes next to
the source.

Commands:
  translate   Translate localization files
  scan        List translatable candidates
  show        Print the entries of one file or archive member
  convert     Convert between .lang, .json and .snbt
  auth        Manage endpoint API keys

Modes:
  mods            Mod jars in mods/ (resource pack)
  quests          FTB Quests and KubeJS lang files (plain files)
  betterquesting  BetterQuesting lang files (resource pack)
  patchouli       Patchouli guide books inside mod jars (resource pack)
  file            Explicit files or directories (written alongside)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Directory holding .mclocalizer.yaml and .env")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable detailed logging")

	root.AddCommand(
		newTranslateCmd(),
		newScanCmd(),
		newShowCmd(),
		newConvertCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logError("%v", err)
		stop()
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mclocalizer version %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit:    %s\n", commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:     %s\n", date)
			if langs := i18n.Languages(); len(langs) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "  catalogs:  %s\n", strings.Join(langs, ", "))
			}
		},
	}
}

// ---------------------------------------------------------------------------
// Configuration flags
// ---------------------------------------------------------------------------

// configFlags are the flags that override config file and environment.
type configFlags struct {
	gameDir       string
	from, to      string
	mode          string
	packName      string
	endpoint      string
	model         string
	provider      string
	proxy         string
	apiKey        string
	maxAttempt    int
	keepUnmatched bool
	keepHidden    bool
}

func (f *configFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.gameDir, "game-dir", "", "Minecraft instance directory")
	cmd.Flags().StringVar(&f.from, "from", "", "Source locale (default en_us)")
	cmd.Flags().StringVar(&f.to, "to", "", "Target locale, e.g. ru_ru")
	cmd.Flags().StringVar(&f.mode, "mode", "", "Output mode: mods, quests, betterquesting, patchouli, file")
	cmd.Flags().StringVar(&f.packName, "pack-name", "", "Resource pack file name")
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "Chat completion URL")
	cmd.Flags().StringVar(&f.model, "model", "", "Model name")
	cmd.Flags().StringVar(&f.provider, "provider", "", "Upstream provider forwarded to the endpoint")
	cmd.Flags().StringVar(&f.proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "API key (or "+settings.APIKeyEnv+" env var)")
	cmd.Flags().IntVar(&f.maxAttempt, "max-attempts", 0, "Rejected translations per entry before giving up (0 = unlimited)")
	cmd.Flags().BoolVar(&f.keepUnmatched, "keep-unmatched", false, "Retry chunks whose response carried no markers instead of dropping them")
	cmd.Flags().BoolVar(&f.keepHidden, "keep-hide-dependency-lines", false, "Write default_hide_dependency_lines into SNBT output")

	_ = cmd.RegisterFlagCompletionFunc("mode", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(resourcepack.Modes))
		for i, m := range resourcepack.Modes {
			names[i] = string(m)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("to", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		out := make([]string, len(mclocale.Common))
		for i, code := range mclocale.Common {
			out[i] = code + "\t" + mclocale.DisplayName(code)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
}

// loadConfig layers flags over config.Load.
func loadConfig(cmd *cobra.Command, f *configFlags) (*config.Config, error) {
	cfg, path, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}
	if path != "" && verbose {
		logInfo(i18n.T("Using config %s"), path)
	}

	changed := cmd.Flags().Changed
	if changed("game-dir") {
		cfg.GameDir = f.gameDir
	}
	if changed("from") {
		cfg.SourceLang = mclocale.Normalize(f.from)
	}
	if changed("to") {
		cfg.TargetLang = mclocale.Normalize(f.to)
	}
	if changed("mode") {
		cfg.Mode = f.mode
	}
	if changed("pack-name") {
		cfg.PackName = f.packName
	}
	if changed("endpoint") {
		cfg.Translator.Endpoint = f.endpoint
	}
	if changed("model") {
		cfg.Translator.Model = f.model
	}
	if changed("provider") {
		cfg.Translator.Provider = f.provider
	}
	if changed("proxy") {
		cfg.Translator.Proxy = f.proxy
	}
	if changed("max-attempts") {
		n := f.maxAttempt
		cfg.Policies.MaxAttempts = &n
	}
	if changed("keep-unmatched") {
		deselect := !f.keepUnmatched
		cfg.Policies.DeselectUnmatchedChunk = &deselect
	}
	if changed("keep-hide-dependency-lines") && f.keepHidden {
		cfg.Policies.SuppressSNBTKeys = nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ---------------------------------------------------------------------------
// Candidate discovery
// ---------------------------------------------------------------------------

// discover scans paths (or the mode's default roots) and returns the nodes
// that hold source-language files.
func discover(cfg *config.Config, paths []string) ([]*tree.Node, error) {
	mode := cfg.OutputMode()
	if len(paths) == 0 {
		paths = resourcepack.ScanRoots(mode, cfg.GameDir)
		if len(paths) == 0 {
			return nil, errors.New(i18n.T("mode file needs at least one path argument"))
		}
	}

	var out []*tree.Node
	for _, p := range paths {
		root, err := tree.Scan(p)
		if err != nil {
			logWarning("%v", err)
			continue
		}
		for _, n := range tree.Candidates(root, cfg.SourceLang) {
			if resourcepack.Accepts(mode, n.Loc) {
				out = append(out, n)
			}
		}
	}
	return out, nil
}

// selectCandidates asks which candidates to translate when stdin is a
// terminal, otherwise returns all of them.
func selectCandidates(nodes []*tree.Node, all bool) ([]*tree.Node, error) {
	if all || len(nodes) < 2 || !term.IsTerminal(int(os.Stdin.Fd())) {
		return nodes, nil
	}

	options := make([]string, len(nodes))
	byLabel := make(map[string]*tree.Node, len(nodes))
	for i, n := range nodes {
		options[i] = candidateLabel(i, n)
		byLabel[options[i]] = n
	}

	prompt := &survey.MultiSelect{
		Message:  i18n.T("Select what to translate"),
		Options:  options,
		Default:  options,
		PageSize: 15,
	}
	var picked []string
	if err := survey.AskOne(prompt, &picked); err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	out := make([]*tree.Node, 0, len(picked))
	for _, label := range picked {
		if n, ok := byLabel[label]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// candidateLabel is the prompt line for the i-th candidate.
func candidateLabel(i int, n *tree.Node) string {
	return fmt.Sprintf("%d. %s", i+1, n.Loc)
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		flags configFlags
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "translate [paths...]",
		Short: "Translate localization files",
		Long: `Translate every selected source-language file and save the results.

Without paths the mode's default locations inside the game directory are
scanned. In a terminal you choose among the candidates found; use --all to
skip the prompt.

Examples:
  # Translate all mods of an instance into Russian
  mclocalizer translate --game-dir ~/.minecraft --to ru_ru --all

  # Translate FTB Quests
  mclocalizer translate --game-dir ~/.minecraft --mode quests --to de_de

  # Translate a single file next to itself
  mclocalizer translate --mode file --to pt_br ./lang/en_us.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &flags)
			if err != nil {
				return err
			}
			return runTranslate(cmd.Context(), cfg, flags.apiKey, args, all)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "Translate every candidate without asking")

	return cmd
}

func runTranslate(ctx context.Context, cfg *config.Config, apiKey string, paths []string, all bool) error {
	if cfg.TargetLang == "" {
		return errors.New(i18n.T("target language is required (use --to or target_lang)"))
	}

	runID := uuid.NewString()[:8]
	target := mclocale.Resolve(cfg.TargetLang)
	logInfo("[%s] %s → %s %s (%s), mode %s", runID, cfg.SourceLang, target.Flag, target.Code, target.Name, cfg.Mode)

	candidates, err := discover(cfg, paths)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		logWarning(i18n.T("No candidates found for %s"), cfg.SourceLang)
		return nil
	}
	logInfo(i18n.N("Found %d candidate", "Found %d candidates", len(candidates)), len(candidates))

	nodes, err := selectCandidates(candidates, all)
	if err != nil {
		return err
	}

	prompts, promptsPath, err := translate.LoadPromptsFromDefaultLocations()
	if err != nil {
		logWarning("%v", err)
	} else if verbose {
		logInfo("Prompts: %s", promptsPath)
	}

	translator := &translate.HTTPTranslator{
		Endpoint:       cfg.Translator.Endpoint,
		Model:          cfg.Translator.Model,
		Provider:       cfg.Translator.Provider,
		APIKey:         settings.ResolveAPIKey(cfg.Translator.Endpoint, apiKey),
		Proxy:          cfg.Translator.Proxy,
		Timeout:        cfg.Translator.Timeout,
		RetryDelay:     cfg.Translator.RetryDelay,
		TargetLang:     target.Code,
		TargetLangName: target.Name,
		Instruction:    prompts.Instruction(),
		OnLog: func(format string, args ...any) {
			logWarning("[%s] "+format, append([]any{runID}, args...)...)
		},
		Verbose: verbose,
	}

	writer := resourcepack.NewWriter(cfg.GameDir, cfg.TargetLang, cfg.OutputMode())
	writer.PackName = cfg.PackName
	writer.Options = cfg.CodecOptions()

	bars := newProgressBar(runID)

	entries := store.New()
	if verbose {
		entries.Subscribe(func() {
			logInfo("[%s] %d entries loaded, %d selected", runID, entries.Len(), entries.CountSelected())
		})
	}

	opts := translate.Options{
		SourceLang:       cfg.SourceLang,
		TargetLang:       cfg.TargetLang,
		Translator:       translator,
		Saver:            writer,
		Store:            entries,
		Policies:         cfg.PipelinePolicies(),
		ProgressInterval: cfg.ProgressInterval,
		OnState: func(s translate.State, n *tree.Node) {
			if s == translate.StateTranslating && n != nil {
				logInfo(i18n.T("Translating %s"), n.Loc)
			}
		},
		OnProgress: bars.update,
		OnError: func(format string, args ...any) {
			logWarning("[%s] "+format, append([]any{runID}, args...)...)
		},
		Verbose: verbose,
	}
	if verbose {
		opts.OnLog = func(format string, args ...any) {
			logInfo("[%s] "+format, append([]any{runID}, args...)...)
		}
	}

	var runner translate.Runner
	out := <-runner.Start(ctx, translate.New(opts), nodes)
	bars.finish(out.Err == nil)

	switch {
	case errors.Is(out.Err, context.Canceled):
		logInfo("%s", i18n.T("Translation canceled"))
		reportSaved(out.Result)
		return nil
	case errors.Is(out.Err, translate.ErrNothingToTranslate):
		logWarning("%s", i18n.T("Nothing to translate"))
		return nil
	case out.Err != nil:
		return out.Err
	}

	reportSaved(out.Result)
	logSuccess("%s", i18n.T("Translation finished"))
	logInfo(i18n.T("%d of %d entries translated, %d files saved"), out.Result.Translated, out.Result.Total, len(out.Result.Saved))
	return nil
}

func reportSaved(res translate.Result) {
	for _, s := range res.Saved {
		logSuccess(i18n.T("Saved %s"), s)
	}
}

// progressBar renders pipeline progress with mpb. The bar is created on the
// first report because the total is only known then.
type progressBar struct {
	name string
	p    *mpb.Progress
	bar  *mpb.Bar
}

func newProgressBar(name string) *progressBar {
	return &progressBar{name: name}
}

func (b *progressBar) update(pr translate.Progress) {
	if b.bar == nil {
		b.p = mpb.New(mpb.WithWidth(60), mpb.WithOutput(os.Stderr))
		b.bar = b.p.AddBar(int64(pr.Total),
			mpb.PrependDecorators(
				decor.Name(b.name, decor.WCSyncSpaceR),
			),
			mpb.AppendDecorators(
				decor.Percentage(decor.WC{W: 5}),
				decor.Counters(0, " | %d/%d"),
				decor.AverageETA(decor.ET_STYLE_GO, decor.WC{W: 6}, decor.WCSyncSpace),
			),
		)
	}
	b.bar.SetCurrent(int64(pr.Done))
}

func (b *progressBar) finish(ok bool) {
	if b.bar == nil {
		return
	}
	if ok {
		b.bar.SetTotal(-1, true)
	} else {
		b.bar.Abort(false)
	}
	b.p.Wait()
}

// ---------------------------------------------------------------------------
// scan
// ---------------------------------------------------------------------------

func newScanCmd() *cobra.Command {
	var flags configFlags

	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "List translatable candidates",
		Long: `List the directories and archive folders holding source-language files,
with the files that would be translated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &flags)
			if err != nil {
				return err
			}
			nodes, err := discover(cfg, args)
			if err != nil {
				return err
			}
			if len(nodes) == 0 {
				logWarning(i18n.T("No candidates found for %s"), cfg.SourceLang)
				return nil
			}

			w := cmd.OutOrStdout()
			for _, n := range nodes {
				fmt.Fprintln(w, n.Loc)
				targets, err := translate.ResolveTargets(n, cfg.SourceLang)
				if err != nil {
					logWarning("%v", err)
					continue
				}
				for _, t := range targets {
					fmt.Fprintf(w, "  %s\n", t.Loc)
				}
			}
			logInfo(i18n.N("Found %d candidate", "Found %d candidates", len(nodes)), len(nodes))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// ---------------------------------------------------------------------------
// show
// ---------------------------------------------------------------------------

func newShowCmd() *cobra.Command {
	var selectedOnly bool

	cmd := &cobra.Command{
		Use:   "show <file | archive.jar!member>",
		Short: "Print the entries of one file or archive member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := source.ParseLocation(args[0])
			if err != nil {
				return err
			}
			doc, _, err := readDocument(cmd.Context(), loc)
			if err != nil {
				return err
			}

			st := store.New()
			st.ReplaceAll(store.FromDocument(doc))

			w := cmd.OutOrStdout()
			for _, e := range st.Entries() {
				if selectedOnly && !e.Selected {
					continue
				}
				mark := " "
				if e.Selected {
					mark = "*"
				}
				fmt.Fprintf(w, "%5d %s %s = %s\n", e.Row, mark, e.ID, oneLine(e.Original))
			}
			logInfo(i18n.T("%d entries, %d pending translation"), st.Len(), st.CountSelected())
			return nil
		},
	}
	cmd.Flags().BoolVar(&selectedOnly, "pending", false, "Only show entries that would be translated")
	return cmd
}

func readDocument(ctx context.Context, loc source.Location) (*content.Document, content.Format, error) {
	src, err := source.ForLocation(loc)
	if err != nil {
		return nil, 0, err
	}
	text, err := src.ReadText(ctx)
	if err != nil {
		return nil, 0, err
	}
	doc, format, err := codec.DecodeNamed(loc.Name(), text)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", loc, err)
	}
	return doc, format, nil
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\n", `\n`)
	if r := []rune(s); len(r) > 100 {
		return string(r[:100]) + "..."
	}
	return s
}

// ---------------------------------------------------------------------------
// convert
// ---------------------------------------------------------------------------

func newConvertCmd() *cobra.Command {
	var (
		preserveComments bool
		keepHidden       bool
		force            bool
	)

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert between .lang, .json and .snbt",
		Long: `Convert a localization file to the format given by the output extension.
The input may be an archive member (archive.jar!assets/mod/lang/en_us.json).

Examples:
  mclocalizer convert en_us.snbt en_us.json
  mclocalizer convert mods/x.jar!assets/x/lang/en_us.json x.snbt`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), args[0], args[1], preserveComments, keepHidden, force)
		},
	}
	cmd.Flags().BoolVar(&preserveComments, "preserve-comments", false, "Keep header comments in .lang output")
	cmd.Flags().BoolVar(&keepHidden, "keep-hide-dependency-lines", false, "Write default_hide_dependency_lines into SNBT output")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing output file")
	return cmd
}

func runConvert(ctx context.Context, input, output string, preserveComments, keepHidden, force bool) error {
	loc, err := source.ParseLocation(input)
	if err != nil {
		return err
	}
	format, err := codec.DetectFormat(output)
	if err != nil {
		return err
	}
	if !force {
		if _, err := os.Stat(output); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", output)
		}
	}

	doc, _, err := readDocument(ctx, loc)
	if err != nil {
		return err
	}

	opts := codec.DefaultOptions()
	opts.PreserveComments = preserveComments
	if keepHidden {
		opts.SNBT.SuppressKeySubstrings = nil
	}
	if err := codec.WriteFile(output, doc, format, opts); err != nil {
		return err
	}
	logSuccess(i18n.T("Saved %s"), output)
	return nil
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	var endpoint string

	resolve := func() string {
		if endpoint != "" {
			return endpoint
		}
		if cfg, _, err := config.Load(rootDir); err == nil {
			return cfg.Translator.Endpoint
		}
		return translate.DefaultEndpoint
	}

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage endpoint API keys",
		Long: `Store, show and remove API keys for translation endpoints.

Keys are kept in ` + "`auth.json`" + ` in the mclocalizer data directory with
0600 permissions, one per endpoint host.`,
	}
	cmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Endpoint URL (default: from config)")

	login := &cobra.Command{
		Use:   "login",
		Short: "Store an API key for the endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ep := resolve()
			var key string
			prompt := &survey.Password{Message: i18n.Tf("Enter API key for %s", settings.EndpointID(ep))}
			if err := survey.AskOne(prompt, &key, survey.WithValidator(survey.Required)); err != nil {
				return err
			}
			if err := settings.SetAPIKey(ep, strings.TrimSpace(key)); err != nil {
				return err
			}
			logSuccess(i18n.T("API key saved for %s"), settings.EndpointID(ep))
			return nil
		},
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API key of the endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ep := resolve()
			if err := settings.Remove(ep); err != nil {
				return err
			}
			logSuccess(i18n.T("API key removed for %s"), settings.EndpointID(ep))
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored API keys",
		Run: func(cmd *cobra.Command, args []string) {
			keys := settings.Load()
			if len(keys) == 0 {
				logInfo(i18n.T("No API keys stored (%s)"), settings.FilePath())
				return
			}
			for id, info := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s %s\n", id, settings.MaskKey(info.Key))
			}
		},
	}

	cmd.AddCommand(login, logout, list)
	return cmd
}
