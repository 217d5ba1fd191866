package copygen

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"launchdeck/pkg/llm"
	"launchdeck/pkg/logging"
	"launchdeck/pkg/models"
)

// maxPostLength is the platform's per-post character limit. Drafts longer
// than this are clamped on a word boundary before they reach the caller.
const maxPostLength = 280

const defaultDraftCount = 3
const maxDraftCount = 10

const systemPrompt = "You are a social media copywriter. Write short, punchy posts " +
	"for X/Twitter. Each post must stand alone, stay under 280 characters, and " +
	"carry no hashtag spam. Separate posts with a line containing only ---."

// Generator turns an account's marketing context into post drafts.
type Generator struct {
	provider llm.Provider
	logger   logging.Logger
}

// NewGenerator builds a Generator over a completion provider.
func NewGenerator(provider llm.Provider, logger logging.Logger) *Generator {
	return &Generator{provider: provider, logger: logger}
}

// Input is the marketing context a generation request draws on. Strategy is
// optional; the launch-specific row wins over the account baseline when the
// caller resolves it.
type Input struct {
	Account  models.Account
	Launch   models.Launch
	Strategy *models.EducationStrategy
	Topic    string
	Count    int
}

// Generate produces post drafts for the given context. The draft count is
// clamped to [1, 10] and each draft to the platform length limit.
func (g *Generator) Generate(ctx context.Context, in Input) ([]string, error) {
	count := in.Count
	if count <= 0 {
		count = defaultDraftCount
	}
	if count > maxDraftCount {
		count = maxDraftCount
	}

	raw, err := g.provider.Complete(ctx, llm.Request{
		System:    systemPrompt,
		Prompt:    BuildPrompt(in, count),
		MaxTokens: 256 * count,
	})
	if err != nil {
		return nil, fmt.Errorf("generate copy: %w", err)
	}

	drafts := splitDrafts(raw)
	if len(drafts) == 0 {
		return nil, fmt.Errorf("generate copy: provider returned no usable drafts")
	}
	if len(drafts) > count {
		drafts = drafts[:count]
	}
	for i, d := range drafts {
		drafts[i] = ClampLength(d, maxPostLength)
	}

	g.logger.WithFields(logging.Fields{
		"account_id": in.Account.ID,
		"launch_id":  in.Launch.ID,
		"requested":  count,
		"returned":   len(drafts),
	}).Info("Generated post drafts")

	return drafts, nil
}

// BuildPrompt assembles the user prompt from the profile, launch, and
// strategy. Empty fields are omitted so the model is never fed blank labels.
func BuildPrompt(in Input, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write %d post drafts promoting the launch below.\n\n", count)

	writeSection(&b, "Brand", []field{
		{"Name", in.Account.DisplayName},
		{"Bio", in.Account.Bio},
		{"Niche", in.Account.Niche},
		{"Target audience", in.Account.TargetAudience},
		{"Brand voice", in.Account.BrandVoice},
	})

	writeSection(&b, "Launch", []field{
		{"Name", in.Launch.Name},
		{"Description", in.Launch.Description},
		{"Goal", in.Launch.Goal},
	})

	if s := in.Strategy; s != nil {
		writeSection(&b, "Strategy", []field{
			{"Core message", s.CoreMessage},
			{"Audience pain", s.AudiencePain},
			{"Transformation", s.Transformation},
			{"Proof points", s.ProofPoints},
			{"Objections to address", s.Objections},
			{"Content pillars", s.ContentPillars},
		})
	}

	if topic := strings.TrimSpace(in.Topic); topic != "" {
		fmt.Fprintf(&b, "Focus these drafts on: %s\n", topic)
	}

	return strings.TrimRight(b.String(), "\n")
}

type field struct {
	label string
	value string
}

func writeSection(b *strings.Builder, heading string, fields []field) {
	var lines []string
	for _, f := range fields {
		if v := strings.TrimSpace(f.value); v != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", f.label, v))
		}
	}
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", heading)
	for _, line := range lines {
		fmt.Fprintf(b, "- %s\n", line)
	}
	b.WriteString("\n")
}

// splitDrafts parses the provider output into individual drafts on the ---
// separator, dropping empties and leading list markers the model sometimes
// adds anyway.
func splitDrafts(raw string) []string {
	var drafts []string
	for _, part := range strings.Split(raw, "---") {
		d := strings.TrimSpace(part)
		d = strings.TrimPrefix(d, "- ")
		for i := 1; i <= maxDraftCount; i++ {
			d = strings.TrimPrefix(d, fmt.Sprintf("%d. ", i))
		}
		d = strings.TrimSpace(d)
		if d != "" {
			drafts = append(drafts, d)
		}
	}
	return drafts
}

// ClampLength trims s to at most limit characters (runes, not bytes),
// preferring a word boundary and appending an ellipsis when it cuts.
func ClampLength(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)
	cut := limit - 1
	for i := cut; i > limit/2; i-- {
		if runes[i] == ' ' {
			cut = i
			break
		}
	}
	return strings.TrimRight(string(runes[:cut]), " ") + "…"
}
