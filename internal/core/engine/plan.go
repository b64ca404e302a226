package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/threadlens/threadlens/internal/core"
)

// Completer is the language-model backend consumed for plan generation.
// internal/ailink provides the production implementation.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	defaultLLMTimeout     = 60 * time.Second
	defaultMaxDiscovery   = 30
	maxPlanCommunities    = 25
	maxValidationProbes   = 20
	validationFailWarnPct = 0.30
)

var modeDescriptions = map[core.Mode]string{
	core.ModePain: "Find pain points, frustrations, complaints, and unmet needs. " +
		"The user wants to discover what problems people are having, what's broken, " +
		"what makes them angry or frustrated. Target emotional, venting, help-seeking posts.",
	core.ModeMarket: "Find buying intent, product comparisons, pricing discussions, and switching triggers. " +
		"The user wants to discover what people are buying, what they're comparing, " +
		"what alternatives they're evaluating, and what makes them switch products.",
	core.ModeGeneral: "Find general discussion, trends, opinions, and insights about this topic. " +
		"The user wants a broad understanding of how this topic is discussed. " +
		"Target popular threads with high engagement.",
}

const planPrompt = `You are an expert community researcher. Given a user's research query and research mode, produce a comprehensive search plan.

## User Query
"%s"

## Research Mode
"%s" -- %s

## Your Task

Produce a JSON search plan with:

1. **communities**: 15-25 real community names where this topic is discussed.
   - Include direct topic communities, platform/marketplace communities, advice communities, and niche specialist communities.
   - Think about what communities would organically discuss this topic even if they never use the exact words from the query.

2. **community_queries**: For EACH community, generate 2-3 search queries that will find relevant posts IN THAT SPECIFIC COMMUNITY.
   - Use the vocabulary and jargon that members of that community actually use.
   - Preserve multi-word concepts as quoted phrases (e.g., "lead generation", not lead generation).
   - Use simple OR-only queries with 2-4 terms. Do NOT use AND or nested parentheses.
   - DO NOT include the community's own topic as a keyword -- members already know where they are.
   - Each query should be SHORT (under 60 characters).
   - Order queries from broadest (most likely to return results) to most specific (highest precision).

3. **global_queries**: 2-3 queries for searching across all communities, using the original topic vocabulary. These serve as a fallback.

4. **intent**: A one-line description of what the user is really looking for.

## Output Format

Return ONLY valid JSON matching this exact structure:

` + "```json" + `
{
  "intent": "string describing what the user wants to learn",
  "communities": ["Name1", "Name2"],
  "community_queries": {
    "Name1": ["query one", "query two"],
    "Name2": ["query one", "query two"]
  },
  "global_queries": ["global query 1", "global query 2"]
}
` + "```"

// PlanBuilder produces a QueryPlan via one of three strategies: a
// user-specified single target, an LLM-assisted decomposition, or a
// keyword-heuristic fallback. Exactly one strategy applies per run.
type PlanBuilder struct {
	Resolver   *Resolver
	Discoverer *Discoverer
	Completer  Completer
	Log        *zap.Logger

	// LLMEnabled gates the LLM path explicitly; it is configuration, not
	// ambient process state.
	LLMEnabled bool
	LLMTimeout time.Duration

	// MaxDiscovery bounds fallback discovery output.
	MaxDiscovery int
}

// Build selects the planning strategy from the caller context and records
// provenance in meta. It never returns nil; a plan with zero communities
// means no communities could be found.
func (b *PlanBuilder) Build(ctx context.Context, topic string, mode core.Mode, community string, meta *core.SearchMetadata) *core.QueryPlan {
	if community != "" {
		plan := b.UserPlan(topic, mode, community)
		meta.PlanSource = plan.Source
		meta.Intent = plan.Intent
		meta.CommunitiesSuggested = 1
		meta.CommunitiesValidated = 1
		return plan
	}

	if b.LLMEnabled && b.Completer != nil {
		if plan := b.LLMPlan(ctx, topic, mode, meta); plan != nil {
			return plan
		}
		b.logger().Info("LLM plan unavailable, falling back to keyword heuristics")
	}

	return b.FallbackPlan(ctx, topic, mode, meta)
}

// UserPlan builds a one-community plan for an explicitly named target.
func (b *PlanBuilder) UserPlan(topic string, mode core.Mode, community string) *core.QueryPlan {
	search := ModeSearch(topic, mode)
	queries := []string{search.Query}
	if light := CommunityQuery(topic, mode); light != search.Query {
		queries = append(queries, light)
	}

	return &core.QueryPlan{
		Intent:           topic,
		Communities:      []string{community},
		CommunityQueries: map[string][]string{community: queries},
		GlobalQueries:    []string{search.Query},
		Mode:             mode,
		Source:           core.PlanSourceUserSpecified,
	}
}

// FallbackPlan discovers communities by keyword heuristics and assigns every
// one the same composed query.
func (b *PlanBuilder) FallbackPlan(ctx context.Context, topic string, mode core.Mode, meta *core.SearchMetadata) *core.QueryPlan {
	meta.PlanSource = core.PlanSourceFallback
	meta.Intent = topic

	max := b.MaxDiscovery
	if max <= 0 {
		max = defaultMaxDiscovery
	}
	communities := b.Discoverer.Discover(ctx, topic, max)
	meta.CommunitiesSuggested = len(communities)

	query := CommunityQuery(topic, mode)
	communityQueries := make(map[string][]string, len(communities))
	for _, name := range communities {
		communityQueries[name] = []string{query}
	}

	return &core.QueryPlan{
		Intent:           topic,
		Communities:      communities,
		CommunityQueries: communityQueries,
		GlobalQueries:    []string{ModeSearch(topic, mode).Query},
		Mode:             mode,
		Source:           core.PlanSourceFallback,
	}
}

// LLMPlan asks the language-model backend for a structured plan, then
// validates the suggested communities. Returns nil on timeout, malformed
// response, or an empty community list, so the caller can fall through.
func (b *PlanBuilder) LLMPlan(ctx context.Context, topic string, mode core.Mode, meta *core.SearchMetadata) *core.QueryPlan {
	log := b.logger()

	timeout := b.LLMTimeout
	if timeout == 0 {
		timeout = defaultLLMTimeout
	}
	llmCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	description := modeDescriptions[mode]
	if description == "" {
		description = modeDescriptions[core.ModeGeneral]
	}
	prompt := fmt.Sprintf(planPrompt, topic, mode, description)

	log.Info("building LLM query plan", zap.Duration("timeout", timeout))
	raw, err := b.Completer.Complete(llmCtx, prompt)
	if err != nil {
		log.Warn("LLM query plan failed", zap.Error(err))
		return nil
	}

	plan := ParsePlanResponse(raw, mode)
	if plan == nil {
		log.Warn("failed to parse LLM query plan", zap.String("head", head(raw, 300)))
		return nil
	}

	meta.PlanSource = core.PlanSourceLLM
	meta.Intent = plan.Intent
	meta.CommunitiesSuggested = len(plan.Communities)
	log.Info("LLM query plan received",
		zap.String("intent", plan.Intent),
		zap.Int("communities", len(plan.Communities)))

	b.validatePlan(ctx, plan, meta)
	if len(plan.Communities) == 0 {
		log.Warn("no suggested communities survived validation")
		return nil
	}
	return plan
}

// validatePlan existence-checks a bounded number of suggested communities,
// keeping only validated names in their original order. A high failure rate
// is a quality signal worth a warning, never grounds to discard the plan.
func (b *PlanBuilder) validatePlan(ctx context.Context, plan *core.QueryPlan, meta *core.SearchMetadata) {
	checked := 0
	valid := make(map[string]bool)
	for _, name := range plan.Communities {
		if checked >= maxValidationProbes {
			break
		}
		checked++
		if info, ok := b.Resolver.About(ctx, name); ok && !info.Over18 {
			valid[name] = true
		}
	}
	meta.CommunitiesValidated = len(valid)

	if checked > 0 {
		failRate := 1 - float64(len(valid))/float64(checked)
		if failRate > validationFailWarnPct {
			meta.Warn(fmt.Sprintf(
				"%d/%d suggested communities failed validation; plan quality may be degraded",
				checked-len(valid), checked))
		}
	}

	var kept []string
	for _, name := range plan.Communities {
		if valid[name] {
			kept = append(kept, name)
		}
	}
	plan.Communities = kept

	for name := range plan.CommunityQueries {
		if !valid[name] {
			delete(plan.CommunityQueries, name)
		}
	}
}

// ParsePlanResponse leniently extracts a QueryPlan from LLM output: first a
// fenced or embedded JSON object, then the raw text as JSON. The empty-field
// guard assigns global queries (or the intent) to communities the model left
// without their own queries.
func ParsePlanResponse(raw string, mode core.Mode) *core.QueryPlan {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var parsed planResponse
	ok := false
	if match := jsonObject.FindString(raw); match != "" {
		ok = json.Unmarshal([]byte(match), &parsed) == nil
	}
	if !ok {
		cleaned := strings.TrimRight(strings.TrimSpace(fenceMarker.ReplaceAllString(raw, "")), "`")
		ok = json.Unmarshal([]byte(cleaned), &parsed) == nil
	}
	if !ok || len(parsed.Communities) == 0 {
		return nil
	}

	communities := dedupe(trimAll(parsed.Communities))
	if len(communities) > maxPlanCommunities {
		communities = communities[:maxPlanCommunities]
	}

	queries := parsed.CommunityQueries
	if queries == nil {
		queries = make(map[string][]string)
	}
	globals := trimAll(parsed.GlobalQueries)
	for _, name := range communities {
		if len(queries[name]) > 0 {
			continue
		}
		switch {
		case len(globals) >= 2:
			queries[name] = globals[:2]
		case len(globals) == 1:
			queries[name] = globals
		default:
			queries[name] = []string{parsed.Intent}
		}
	}

	if len(globals) == 0 {
		globals = []string{parsed.Intent}
	}

	return &core.QueryPlan{
		Intent:           parsed.Intent,
		Communities:      communities,
		CommunityQueries: queries,
		GlobalQueries:    globals,
		Mode:             mode,
		Source:           core.PlanSourceLLM,
	}
}

type planResponse struct {
	Intent           string              `json:"intent"`
	Communities      []string            `json:"communities"`
	CommunityQueries map[string][]string `json:"community_queries"`
	GlobalQueries    []string            `json:"global_queries"`
}

var (
	jsonObject  = regexp.MustCompile(`\{[\s\S]*\}`)
	fenceMarker = regexp.MustCompile("```(?:json)?\\s*")
)

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func (b *PlanBuilder) logger() *zap.Logger {
	if b.Log != nil {
		return b.Log
	}
	return zap.NewNop()
}
