package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/threadlens/threadlens/internal/core"
)

// Listing kinds used by the JSON endpoints.
const (
	kindPost      = "t3"
	kindComment   = "t1"
	kindCommunity = "t5"
)

// CommunityInfo is the subset of the /about payload the engine needs.
type CommunityInfo struct {
	Name        string
	Subscribers int
	Over18      bool
	Description string
}

// SearchOptions scope a post search.
type SearchOptions struct {
	Community string // empty means unscoped search
	Sort      string // relevance, comments, hot, ...
	Limit     int
	Window    string // t parameter; defaults to "month"
}

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []child `json:"children"`
	} `json:"data"`
}

type child struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type postData struct {
	ID          string   `json:"id"`
	Subreddit   string   `json:"subreddit"`
	Title       string   `json:"title"`
	Permalink   string   `json:"permalink"`
	URL         string   `json:"url"`
	Selftext    string   `json:"selftext"`
	UpvoteRatio *float64 `json:"upvote_ratio"`
	Score       int      `json:"score"`
	NumComments int      `json:"num_comments"`
	CreatedUTC  float64  `json:"created_utc"`
}

type commentData struct {
	Author    string `json:"author"`
	Score     int    `json:"score"`
	Body      string `json:"body"`
	Permalink string `json:"permalink"`
}

type communityData struct {
	DisplayName       string `json:"display_name"`
	Subscribers       int    `json:"subscribers"`
	PublicDescription string `json:"public_description"`
	Description       string `json:"description"`
	Over18            bool   `json:"over18"`
}

// SearchPosts runs a keyword search, paginating via the opaque cursor until
// opts.Limit items are collected or pages run out. Items are deduplicated
// within the call; first occurrence wins.
func (c *Client) SearchPosts(ctx context.Context, query string, opts SearchOptions) []*core.ResultItem {
	limit := opts.Limit
	if limit <= 0 {
		limit = MaxPerPage
	}
	window := opts.Window
	if window == "" {
		window = "month"
	}

	var collected []*core.ResultItem
	seen := make(map[string]bool)
	after := ""

	for len(collected) < limit {
		pageSize := limit - len(collected)
		if pageSize > MaxPerPage {
			pageSize = MaxPerPage
		}

		params := url.Values{}
		params.Set("q", query)
		params.Set("limit", strconv.Itoa(pageSize))
		params.Set("t", window)
		if opts.Sort != "" {
			params.Set("sort", opts.Sort)
		}
		if after != "" {
			params.Set("after", after)
		}

		path := "/search.json"
		if opts.Community != "" {
			path = fmt.Sprintf("/r/%s/search.json", url.PathEscape(opts.Community))
			params.Set("restrict_sr", "on")
		}

		body, ok := c.getJSON(ctx, path, params)
		if !ok {
			break
		}

		var page listing
		if err := json.Unmarshal(body, &page); err != nil {
			break
		}

		added := 0
		for _, ch := range page.Data.Children {
			if ch.Kind != kindPost {
				continue
			}
			item := parsePost(ch.Data, c.baseURL.String())
			if item == nil || seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			collected = append(collected, item)
			added++
			if len(collected) >= limit {
				break
			}
		}

		after = page.Data.After
		if after == "" || added == 0 {
			break
		}
	}

	return collected
}

// AboutCommunity probes a community's about endpoint. The second return is
// false when the community does not exist or the request failed.
func (c *Client) AboutCommunity(ctx context.Context, name string) (*CommunityInfo, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}

	path := fmt.Sprintf("/r/%s/about.json", url.PathEscape(name))
	body, ok := c.getJSON(ctx, path, nil)
	if !ok {
		return nil, false
	}

	var about struct {
		Kind string        `json:"kind"`
		Data communityData `json:"data"`
	}
	if err := json.Unmarshal(body, &about); err != nil || about.Kind != kindCommunity {
		return nil, false
	}

	display := about.Data.DisplayName
	if display == "" {
		display = name
	}
	description := about.Data.PublicDescription
	if description == "" {
		description = about.Data.Description
	}

	return &CommunityInfo{
		Name:        display,
		Subscribers: about.Data.Subscribers,
		Over18:      about.Data.Over18,
		Description: description,
	}, true
}

// SearchCommunities runs the dedicated community search, which matches both
// names and descriptions.
func (c *Client) SearchCommunities(ctx context.Context, term string, limit int) []CommunityInfo {
	if limit <= 0 {
		limit = 25
	}

	params := url.Values{}
	params.Set("q", term)
	params.Set("limit", strconv.Itoa(limit))

	body, ok := c.getJSON(ctx, "/subreddits/search.json", params)
	if !ok {
		return nil
	}

	var page listing
	if err := json.Unmarshal(body, &page); err != nil {
		return nil
	}

	var infos []CommunityInfo
	for _, ch := range page.Data.Children {
		if ch.Kind != kindCommunity {
			continue
		}
		var data communityData
		if err := json.Unmarshal(ch.Data, &data); err != nil || data.DisplayName == "" {
			continue
		}
		description := data.PublicDescription
		if description == "" {
			description = data.Description
		}
		infos = append(infos, CommunityInfo{
			Name:        data.DisplayName,
			Subscribers: data.Subscribers,
			Over18:      data.Over18,
			Description: description,
		})
	}
	return infos
}

// TopComments fetches up to limit top-level replies for an item, sorted by
// the source's "top" ranking. Placeholder continuation stubs are skipped.
func (c *Client) TopComments(ctx context.Context, community, id string, limit int) []core.Reply {
	if community == "" || id == "" || limit <= 0 {
		return nil
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sort", "top")

	path := fmt.Sprintf("/r/%s/comments/%s.json", url.PathEscape(community), url.PathEscape(id))
	body, ok := c.getJSON(ctx, path, params)
	if !ok {
		return nil
	}

	// The comments endpoint returns a two-element array: the post listing
	// followed by the comment listing.
	var pages []listing
	if err := json.Unmarshal(body, &pages); err != nil || len(pages) < 2 {
		return nil
	}

	var replies []core.Reply
	for _, ch := range pages[1].Data.Children {
		if ch.Kind != kindComment {
			continue
		}
		var data commentData
		if err := json.Unmarshal(ch.Data, &data); err != nil {
			continue
		}
		author := data.Author
		if author == "" {
			author = "[deleted]"
		}
		permalink := data.Permalink
		if permalink != "" {
			permalink = c.baseURL.String() + permalink
		}
		replies = append(replies, core.Reply{
			Author:    author,
			Score:     data.Score,
			Body:      data.Body,
			Permalink: permalink,
		})
		if len(replies) >= limit {
			break
		}
	}
	return replies
}

func parsePost(raw json.RawMessage, base string) *core.ResultItem {
	var data postData
	if err := json.Unmarshal(raw, &data); err != nil || data.ID == "" {
		return nil
	}

	permalink := ""
	if data.Permalink != "" {
		permalink = base + data.Permalink
	}
	external := data.URL
	if external == "" {
		external = permalink
	}

	item := &core.ResultItem{
		ID:              data.ID,
		Community:       data.Subreddit,
		Title:           data.Title,
		BodyExcerpt:     data.Selftext,
		Permalink:       permalink,
		ExternalURL:     external,
		Score:           data.Score,
		NumReplies:      data.NumComments,
		EngagementRatio: data.UpvoteRatio,
		TopReplies:      []core.Reply{},
	}
	if data.CreatedUTC > 0 {
		created := time.Unix(int64(data.CreatedUTC), 0).UTC()
		item.CreatedAt = &created
	}
	return item
}
