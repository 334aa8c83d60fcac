package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dshills/docimpact/internal/cache"
	"github.com/dshills/docimpact/internal/changes"
	"github.com/dshills/docimpact/internal/providers"
	"github.com/dshills/docimpact/internal/ratelimit"
	"github.com/dshills/docimpact/internal/redact"
)

// Options are the per-run classification settings.
type Options struct {
	Model             string
	MaxTokens         int
	Temperature       float64
	MaxDiffChars      int
	ExtraInstructions string
	Policy            *Policy
	Redact            redact.Policy
}

// Classifier turns change-sets into verdicts, one model call at a time.
// It is not safe for concurrent use.
type Classifier struct {
	completer providers.Completer
	limiter   *ratelimit.Limiter
	cache     *cache.Cache
	opts      Options
	system    string
	logger    *slog.Logger
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithCache stores and reuses raw model responses.
func WithCache(c *cache.Cache) ClassifierOption {
	return func(cl *Classifier) { cl.cache = c }
}

// WithLogger sets the logger used for per-change-set diagnostics.
func WithLogger(l *slog.Logger) ClassifierOption {
	return func(cl *Classifier) {
		if l != nil {
			cl.logger = l
		}
	}
}

// NewClassifier creates a Classifier. A nil limiter means no throttling.
func NewClassifier(c providers.Completer, limiter *ratelimit.Limiter, opts Options, options ...ClassifierOption) *Classifier {
	if limiter == nil {
		limiter = ratelimit.New(0)
	}
	cl := &Classifier{
		completer: c,
		limiter:   limiter,
		opts:      opts,
		logger:    slog.Default(),
	}
	for _, o := range options {
		o(cl)
	}
	cl.system = SystemPrompt(opts.ExtraInstructions, opts.Policy)
	return cl
}

// Classify returns the verdict for d. It never returns an error; failures
// become a verdict with Error set and UserFacing false.
func (c *Classifier) Classify(ctx context.Context, d changes.Detail) AnnotatedVerdict {
	raw, err := c.complete(ctx, d)
	if err != nil {
		c.logger.Warn("classification failed", "number", d.Number, "error", err)
		return FailedVerdict(d, err)
	}

	v, tier := ParseWithTier(raw)
	if tier == TierSalvage {
		c.logger.Warn("model response was not valid JSON, salvaged", "number", d.Number)
	} else {
		c.logger.Debug("parsed model response", "number", d.Number, "tier", tier.String())
	}
	return Annotate(d, v)
}

func (c *Classifier) complete(ctx context.Context, d changes.Detail) (string, error) {
	redacted := d
	redacted.Title = c.opts.Redact.Text(d.Title)
	redacted.Description = c.opts.Redact.Text(d.Description)
	redacted.Diff = c.opts.Redact.Diff(d.Diff)
	user := BuildUserMessage(redacted, c.opts.MaxDiffChars)

	var key string
	if c.cache != nil && c.cache.Enabled() {
		key = cache.BuildKey(c.completer.Name(), c.opts.Model, c.system, user)
		if raw, ok := c.cache.Get(key); ok {
			c.logger.Debug("cache hit", "number", d.Number)
			return raw, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	resp, err := c.completer.Complete(ctx, providers.CompletionRequest{
		SystemPrompt: c.system,
		UserPrompt:   user,
		MaxTokens:    c.opts.MaxTokens,
		Temperature:  c.opts.Temperature,
		JSONMode:     true,
	})
	if err != nil {
		return "", err
	}
	c.logger.Debug("model call complete", "number", d.Number, "tokens", resp.TokensUsed)

	if key != "" {
		if err := c.cache.Put(key, resp.Content); err != nil {
			c.logger.Warn("cache write failed", "error", err)
		}
	}
	return resp.Content, nil
}
