package engine

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/threadlens/threadlens/internal/core"
	"github.com/threadlens/threadlens/internal/core/reddit"
)

const (
	// defaultNicheThreshold is the subscriber count below which a community
	// counts as niche for slot reservation.
	defaultNicheThreshold = 1000

	// gapFillProbes caps the direct probes used to fill in missing
	// subscriber counts.
	gapFillProbes = 5

	communitySearchPageSize = 25
	postExtractionLimit     = 100
)

// Discoverer finds communities relevant to a topic by combining several
// independent search strategies into one ranked candidate pool.
type Discoverer struct {
	Source   Source
	Resolver *Resolver
	Log      *zap.Logger

	// NicheThreshold is tunable; the ~25% reservation ratio is a diversity
	// heuristic, not an invariant.
	NicheThreshold int
}

// Discover returns up to max community names ranked by relevance then size,
// with roughly a quarter of the slots reserved for niche communities. Any
// single strategy failing contributes nothing; if every strategy fails the
// result is empty, which callers treat as "no communities found".
func (d *Discoverer) Discover(ctx context.Context, topic string, max int) []string {
	if max <= 0 {
		return nil
	}
	log := d.logger()
	keywords := Keywords(topic)

	pool := newCandidatePool()

	// Strategy 1: treat the topic itself, spaces stripped, as a literal
	// community name.
	slug := strings.ReplaceAll(strings.TrimSpace(topic), " ", "")
	if slug != "" {
		if info, ok := d.Resolver.About(ctx, slug); ok && !info.Over18 {
			score := RelevanceScore(info.Name, "", keywords)
			if score == 0 {
				score = 1
			}
			pool.add(&core.Candidate{
				Name:        info.Name,
				Subscribers: info.Subscribers,
				Relevance:   score,
			})
			log.Info("direct community hit",
				zap.String("community", info.Name),
				zap.Int("subscribers", info.Subscribers))
		}
	}

	// Strategy 2: dedicated community search over names and descriptions,
	// for the full topic, the subject keyword, and the top keyword pair.
	terms := []string{topic}
	if len(keywords) > 0 {
		terms = append(terms, keywords[0])
	}
	if len(keywords) >= 2 {
		terms = append(terms, keywords[0]+" "+keywords[1])
	}
	for _, term := range terms {
		for _, info := range d.Source.SearchCommunities(ctx, term, communitySearchPageSize) {
			if info.Over18 || pool.has(info.Name) {
				continue
			}
			score := RelevanceScore(info.Name, info.Description, keywords)
			if score == 0 {
				continue
			}
			pool.add(&core.Candidate{
				Name:        info.Name,
				Subscribers: info.Subscribers,
				Relevance:   score,
				Description: info.Description,
			})
		}
	}

	// Strategy 3: generic post search, extracting the hosting communities.
	// Subscriber counts are unknown here; the description is empty so only
	// the name can match.
	posts := d.Source.SearchPosts(ctx, topic, reddit.SearchOptions{
		Sort:   "relevance",
		Limit:  postExtractionLimit,
		Window: "year",
	})
	for _, post := range posts {
		if post.Community == "" || pool.has(post.Community) {
			continue
		}
		score := RelevanceScore(post.Community, "", keywords)
		if score == 0 {
			continue
		}
		pool.add(&core.Candidate{Name: post.Community, Relevance: score})
	}

	// Gap-fill: probe candidates missing a subscriber count, bounded.
	probed := 0
	for _, cand := range pool.ordered {
		if cand.Subscribers > 0 || probed >= gapFillProbes {
			continue
		}
		probed++
		info, ok := d.Resolver.About(ctx, cand.Name)
		if !ok {
			continue
		}
		cand.Subscribers = info.Subscribers
		cand.Description = info.Description
		if score := RelevanceScore(cand.Name, info.Description, keywords); score > cand.Relevance {
			cand.Relevance = score
		}
	}

	if len(pool.ordered) == 0 {
		log.Warn("no relevant communities found", zap.String("topic", topic))
		return nil
	}

	selected := rankAndSelect(pool.ordered, max, d.nicheThreshold())
	log.Info("discovered communities",
		zap.String("topic", topic),
		zap.Int("candidates", len(pool.ordered)),
		zap.Strings("selected", selected))
	return selected
}

func (d *Discoverer) nicheThreshold() int {
	if d.NicheThreshold > 0 {
		return d.NicheThreshold
	}
	return defaultNicheThreshold
}

func (d *Discoverer) logger() *zap.Logger {
	if d.Log != nil {
		return d.Log
	}
	return zap.NewNop()
}

// rankAndSelect orders candidates by (relevance, subscribers) descending and
// picks up to max names, reserving ~25% of the slots for niche communities
// and backfilling from the remaining ranked list when slots stay open.
func rankAndSelect(candidates []*core.Candidate, max, nicheThreshold int) []string {
	ranked := make([]*core.Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Relevance != ranked[j].Relevance {
			return ranked[i].Relevance > ranked[j].Relevance
		}
		return ranked[i].Subscribers > ranked[j].Subscribers
	})

	nicheSlots := max / 4
	if nicheSlots < 1 {
		nicheSlots = 1
	}

	var selected []string
	taken := make(map[string]bool)
	nicheCount := 0

	for _, cand := range ranked {
		if len(selected) >= max {
			break
		}
		if cand.Subscribers < nicheThreshold {
			if nicheCount >= nicheSlots {
				continue
			}
			nicheCount++
		}
		selected = append(selected, cand.Name)
		taken[cand.Name] = true
	}

	if len(selected) < max {
		for _, cand := range ranked {
			if taken[cand.Name] {
				continue
			}
			selected = append(selected, cand.Name)
			if len(selected) >= max {
				break
			}
		}
	}

	return selected
}

// candidatePool keeps insertion order so ranking ties stay deterministic.
type candidatePool struct {
	byName  map[string]*core.Candidate
	ordered []*core.Candidate
}

func newCandidatePool() *candidatePool {
	return &candidatePool{byName: make(map[string]*core.Candidate)}
}

func (p *candidatePool) has(name string) bool {
	_, ok := p.byName[strings.ToLower(name)]
	return ok
}

func (p *candidatePool) add(cand *core.Candidate) {
	key := strings.ToLower(cand.Name)
	if _, ok := p.byName[key]; ok {
		return
	}
	p.byName[key] = cand
	p.ordered = append(p.ordered, cand)
}
