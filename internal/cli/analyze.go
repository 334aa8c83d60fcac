package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/docimpact/internal/analysis"
	"github.com/dshills/docimpact/internal/cache"
	"github.com/dshills/docimpact/internal/changes"
	"github.com/dshills/docimpact/internal/config"
	"github.com/dshills/docimpact/internal/github"
	"github.com/dshills/docimpact/internal/output"
	"github.com/dshills/docimpact/internal/pipeline"
	"github.com/dshills/docimpact/internal/providers"
	"github.com/dshills/docimpact/internal/ratelimit"
	"github.com/dshills/docimpact/internal/redact"
)

// analyze flags
var (
	flagSince            string
	flagReleaseTag       string
	flagToken            string
	flagProvider         string
	flagModel            string
	flagFormat           string
	flagOut              string
	flagOutputDir        string
	flagRateLimit        int
	flagMaxPRs           int
	flagLookbackDays     int
	flagMaxDiffChars     int
	flagInstructions     string
	flagPolicy           string
	flagCache            bool
	flagNoRedact         bool
	flagFailOnUserFacing bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [repository]",
	Short: "Analyze merged pull requests for documentation impact",
	Long: `Analyze the pull requests merged into a GitHub repository and report which ones
change user-facing behavior and which documentation they affect.

The repository may be given as owner/name, a github.com URL or an SSH remote.
When omitted, the origin remote of the current git repository is used.

The analysis window starts at --since, else the creation date of --release-tag,
else the latest release, else the configured lookback (30 days by default).`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitCode = runAnalyze(cmd.Context(), args)
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&flagSince, "since", "", "Analyze PRs merged on or after this date (YYYY-MM-DD)")
	f.StringVar(&flagReleaseTag, "release-tag", "", "Analyze PRs merged since this release")
	f.StringVar(&flagToken, "token", "", "GitHub token (default: $GITHUB_TOKEN)")
	f.StringVar(&flagProvider, "provider", "", "LLM provider (openai, anthropic, gemini, ollama)")
	f.StringVar(&flagModel, "model", "", "Model name")
	f.StringVar(&flagFormat, "format", "", "Output format (markdown, text, json, html)")
	f.StringVar(&flagOut, "out", "", "Output file path")
	f.StringVar(&flagOutputDir, "output-dir", "", "Write a timestamped report into this directory")
	f.IntVar(&flagRateLimit, "rate-limit", 0, "Maximum classifier calls per minute")
	f.IntVar(&flagMaxPRs, "max-prs", 0, "Maximum number of PRs to analyze")
	f.IntVar(&flagLookbackDays, "lookback-days", 0, "Window in days when no release exists")
	f.IntVar(&flagMaxDiffChars, "max-diff-chars", 0, "Maximum diff characters sent per PR")
	f.StringVar(&flagInstructions, "instructions", "", "Extra instructions for the classifier")
	f.StringVar(&flagPolicy, "policy", "", "Classification policy file (YAML)")
	f.BoolVar(&flagCache, "cache", false, "Reuse cached classifier responses")
	f.BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	f.BoolVar(&flagFailOnUserFacing, "fail-on-user-facing", false, "Exit 1 when any user-facing change is found")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagOutputDir != "" {
		m["outputDir"] = flagOutputDir
	}
	if flagRateLimit > 0 {
		m["rateLimitPerMinute"] = strconv.Itoa(flagRateLimit)
	}
	if flagMaxPRs > 0 {
		m["maxChangeSets"] = strconv.Itoa(flagMaxPRs)
	}
	if flagLookbackDays > 0 {
		m["lookbackDays"] = strconv.Itoa(flagLookbackDays)
	}
	if flagMaxDiffChars > 0 {
		m["maxDiffChars"] = strconv.Itoa(flagMaxDiffChars)
	}
	if flagInstructions != "" {
		m["extraInstructions"] = flagInstructions
	}
	if flagPolicy != "" {
		m["policyFile"] = flagPolicy
	}
	if flagToken != "" {
		m["github.token"] = flagToken
	}
	if flagCache {
		m["cache.enabled"] = "true"
	}
	return m
}

// parseSince parses a --since value as a UTC calendar date.
func parseSince(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid --since %q: expected YYYY-MM-DD", s)
	}
	return &t, nil
}

// resolveRepoRef returns the repository from args, or from the origin
// remote when none was given.
func resolveRepoRef(args []string) (changes.Repo, error) {
	ref := ""
	if len(args) > 0 {
		ref = args[0]
	} else {
		detected, err := changes.DetectRepoRef()
		if err != nil {
			return changes.Repo{}, fmt.Errorf("no repository given and none detected: %w", err)
		}
		ref = detected
	}
	return changes.ParseRepoRef(ref)
}

func fail(code int, format string, args ...any) int {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return code
}

func runAnalyze(ctx context.Context, args []string) int {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	logger := slog.Default()

	since, err := parseSince(flagSince)
	if err != nil {
		return fail(ExitUsageError, "%v", err)
	}
	repo, err := resolveRepoRef(args)
	if err != nil {
		return fail(ExitUsageError, "%v", err)
	}

	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return fail(ExitConfigError, "%v", err)
	}
	if flagNoRedact {
		cfg.Privacy.RedactSecrets = false
		logger.Warn("secret redaction is disabled")
	}
	if err := config.Validate(cfg); err != nil {
		return fail(ExitConfigError, "%v", err)
	}
	if _, err := output.GetWriter(cfg.Format); err != nil {
		return fail(ExitUsageError, "%v", err)
	}

	completer, err := providers.New(cfg.Provider, cfg.Model)
	if err != nil {
		return fail(ExitConfigError, "%v", err)
	}
	policy, err := analysis.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return fail(ExitConfigError, "%v", err)
	}
	respCache, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		return fail(ExitRuntimeError, "opening cache: %v", err)
	}
	platform, err := github.NewClient(cfg.GitHub.Token, cfg.GitHub.APIURL)
	if err != nil {
		return fail(ExitConfigError, "%v", err)
	}
	platform.SetLogger(logger)

	retriever := changes.NewRetriever(platform,
		changes.WithMaxResults(cfg.MaxChangeSets),
		changes.WithLookback(time.Duration(cfg.LookbackDays)*24*time.Hour),
		changes.WithLogger(logger),
	)
	classifier := analysis.NewClassifier(completer,
		ratelimit.New(cfg.RateLimitPerMinute, ratelimit.WithLogger(logger)),
		analysis.Options{
			Model:             cfg.Model,
			MaxTokens:         cfg.MaxTokens,
			Temperature:       cfg.Temperature,
			MaxDiffChars:      cfg.MaxDiffChars,
			ExtraInstructions: cfg.ExtraInstructions,
			Policy:            policy,
			Redact: redact.Policy{
				Secrets: cfg.Privacy.RedactSecrets,
				Paths:   cfg.Privacy.RedactPaths,
			},
		},
		analysis.WithCache(respCache),
		analysis.WithLogger(logger),
	)

	r, err := pipeline.New(retriever, classifier, pipeline.WithLogger(logger)).Run(ctx, pipeline.Params{
		RepoRef:    repo.FullName(),
		Since:      since,
		ReleaseTag: flagReleaseTag,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fail(ExitRuntimeError, "interrupted")
		}
		return fail(ExitRuntimeError, "%v", err)
	}

	path, err := output.WriteReport(r, cfg.Format, output.Destination{Path: flagOut, Dir: cfg.OutputDir})
	if err != nil {
		return fail(ExitRuntimeError, "writing output: %v", err)
	}
	fmt.Fprintln(os.Stderr, renderSummary(r, path))

	if flagFailOnUserFacing && r.HasUserFacing() {
		return ExitUserFacing
	}
	return ExitSuccess
}
