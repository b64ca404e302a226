package core

import "time"

// Mode selects the vocabulary injected into composed search queries.
type Mode string

const (
	ModePain    Mode = "pain"
	ModeMarket  Mode = "market"
	ModeGeneral Mode = "general"
)

// ParseMode normalizes a mode string, defaulting to general.
func ParseMode(value string) Mode {
	switch Mode(value) {
	case ModePain, ModeMarket, ModeGeneral:
		return Mode(value)
	default:
		return ModeGeneral
	}
}

// PlanSource records which strategy produced a QueryPlan.
type PlanSource string

const (
	PlanSourceLLM           PlanSource = "llm"
	PlanSourceFallback      PlanSource = "fallback"
	PlanSourceUserSpecified PlanSource = "user_specified"
)

// QueryPlan is the structured set of target communities and per-community
// queries driving one search run. Communities contains no duplicates and
// insertion order is search priority.
type QueryPlan struct {
	Intent           string              `json:"intent"`
	Communities      []string            `json:"communities"`
	CommunityQueries map[string][]string `json:"community_queries"`
	GlobalQueries    []string            `json:"global_queries"`
	Mode             Mode                `json:"mode"`
	Source           PlanSource          `json:"source"`
}

// QueriesFor returns the queries to run in the given community. Communities
// without their own queries fall back to the plan's global queries, then to
// the intent string, so the result is never empty for a planned community.
func (p *QueryPlan) QueriesFor(community string) []string {
	if p == nil {
		return nil
	}
	if queries, ok := p.CommunityQueries[community]; ok && len(queries) > 0 {
		return queries
	}
	if len(p.GlobalQueries) > 0 {
		return p.GlobalQueries
	}
	if p.Intent != "" {
		return []string{p.Intent}
	}
	return nil
}

// Reply is one top-level reply attached to a ResultItem.
type Reply struct {
	Author    string `json:"author"`
	Score     int    `json:"score"`
	Body      string `json:"body"`
	Permalink string `json:"permalink"`
}

// ResultItem is one discovered unit of discussion. Items are created by the
// fan-out engine on first sighting, mutated once by the comment enricher to
// attach replies, and never mutated afterward.
type ResultItem struct {
	ID              string     `json:"id"`
	Community       string     `json:"community"`
	Title           string     `json:"title"`
	BodyExcerpt     string     `json:"body_excerpt"`
	Permalink       string     `json:"permalink"`
	ExternalURL     string     `json:"external_url"`
	Score           int        `json:"score"`
	NumReplies      int        `json:"num_replies"`
	EngagementRatio *float64   `json:"engagement_ratio,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	TopReplies      []Reply    `json:"top_replies"`
}

// Candidate is a community discovery working record. It exists only while
// the candidate pool is being ranked and is discarded once the plan's
// community list is finalized.
type Candidate struct {
	Name        string
	Subscribers int
	Relevance   int
	Description string
}

// SearchMetadata describes how a search run was conducted. It is created at
// pipeline start, mutated throughout, and returned alongside results.
type SearchMetadata struct {
	RunID                   string     `json:"run_id"`
	PlanSource              PlanSource `json:"plan_source"`
	Intent                  string     `json:"intent"`
	CommunitiesSuggested    int        `json:"communities_suggested"`
	CommunitiesValidated    int        `json:"communities_validated"`
	CommunitiesSearched     int        `json:"communities_searched"`
	CommunitiesYielded      int        `json:"communities_yielded"`
	QueriesExecuted         int        `json:"queries_executed"`
	QuoteRetries            int        `json:"quote_retries"`
	ItemsCollected          int        `json:"items_collected"`
	GlobalFallbackTriggered bool       `json:"global_fallback_triggered"`
	Warnings                []string   `json:"warnings"`
	ElapsedSeconds          float64    `json:"elapsed_seconds"`
}

// Warn appends a warning to the metadata record.
func (m *SearchMetadata) Warn(message string) {
	if m == nil || message == "" {
		return
	}
	m.Warnings = append(m.Warnings, message)
}

// Report is the full outcome of one scout run.
type Report struct {
	Topic    string          `json:"topic"`
	Mode     Mode            `json:"mode"`
	Items    []*ResultItem   `json:"items"`
	Metadata *SearchMetadata `json:"metadata"`
}
