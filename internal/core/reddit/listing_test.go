package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, w http.ResponseWriter, payload string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	_, err := w.Write([]byte(payload))
	require.NoError(t, err)
}

func postChild(id, subreddit, title string) string {
	return fmt.Sprintf(`{"kind":"t3","data":{"id":%q,"subreddit":%q,"title":%q,"permalink":"/r/%s/comments/%s/","score":10,"num_comments":4,"created_utc":1756500000}}`,
		id, subreddit, title, subreddit, id)
}

func TestSearchPostsPaginatesAndDeduplicates(t *testing.T) {
	var pages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search.json", r.URL.Path)
		pages = append(pages, r.URL.Query().Get("after"))
		switch r.URL.Query().Get("after") {
		case "":
			writeJSON(t, w, fmt.Sprintf(`{"kind":"Listing","data":{"after":"c1","children":[%s,%s]}}`,
				postChild("a1", "espresso", "first"), postChild("a2", "espresso", "second")))
		default:
			// Second page repeats a1; the duplicate must not reappear.
			writeJSON(t, w, fmt.Sprintf(`{"kind":"Listing","data":{"after":"","children":[%s,%s]}}`,
				postChild("a1", "espresso", "first"), postChild("a3", "espresso", "third")))
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	items := client.SearchPosts(context.Background(), "grinder", SearchOptions{Limit: 3})

	require.Len(t, items, 3)
	require.Equal(t, []string{"", "c1"}, pages)
	require.Equal(t, "a1", items[0].ID)
	require.Equal(t, "a3", items[2].ID)
	require.Equal(t, server.URL+"/r/espresso/comments/a1/", items[0].Permalink)
	require.NotNil(t, items[0].CreatedAt)
	require.NotNil(t, items[0].TopReplies)
	require.Empty(t, items[0].TopReplies)
}

func TestSearchPostsScopedToCommunity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/r/espresso/search.json", r.URL.Path)
		require.Equal(t, "on", r.URL.Query().Get("restrict_sr"))
		require.Equal(t, "month", r.URL.Query().Get("t"))
		writeJSON(t, w, fmt.Sprintf(`{"kind":"Listing","data":{"after":"","children":[%s]}}`,
			postChild("b1", "espresso", "scoped")))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	items := client.SearchPosts(context.Background(), "grinder", SearchOptions{Community: "espresso", Limit: 5})
	require.Len(t, items, 1)
}

func TestAboutCommunity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/r/espresso/about.json":
			writeJSON(t, w, `{"kind":"t5","data":{"display_name":"espresso","subscribers":250000,"public_description":"coffee talk"}}`)
		case "/r/gone/about.json":
			// Search landing page disguised as JSON; wrong kind.
			writeJSON(t, w, `{"kind":"Listing","data":{}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	info, ok := client.AboutCommunity(context.Background(), "espresso")
	require.True(t, ok)
	require.Equal(t, "espresso", info.Name)
	require.Equal(t, 250000, info.Subscribers)
	require.Equal(t, "coffee talk", info.Description)

	_, ok = client.AboutCommunity(context.Background(), "gone")
	require.False(t, ok)

	_, ok = client.AboutCommunity(context.Background(), "")
	require.False(t, ok)
}

func TestSearchCommunities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/subreddits/search.json", r.URL.Path)
		writeJSON(t, w, `{"kind":"Listing","data":{"children":[
			{"kind":"t5","data":{"display_name":"espresso","subscribers":250000,"public_description":"coffee"}},
			{"kind":"t5","data":{"display_name":"","subscribers":5}},
			{"kind":"t3","data":{"id":"not-a-community"}}
		]}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	infos := client.SearchCommunities(context.Background(), "espresso", 25)
	require.Len(t, infos, 1)
	require.Equal(t, "espresso", infos[0].Name)
}

func TestTopComments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/r/espresso/comments/a1.json", r.URL.Path)
		require.Equal(t, "top", r.URL.Query().Get("sort"))
		post := `{"kind":"Listing","data":{"children":[]}}`
		comments := `{"kind":"Listing","data":{"children":[
			{"kind":"t1","data":{"author":"alice","score":42,"body":"descale it","permalink":"/r/espresso/comments/a1/c1/"}},
			{"kind":"more","data":{}},
			{"kind":"t1","data":{"author":"","score":7,"body":"same here"}}
		]}}`
		writeJSON(t, w, fmt.Sprintf("[%s,%s]", post, comments))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	replies := client.TopComments(context.Background(), "espresso", "a1", 5)

	require.Len(t, replies, 2)
	require.Equal(t, "alice", replies[0].Author)
	require.Equal(t, server.URL+"/r/espresso/comments/a1/c1/", replies[0].Permalink)
	require.Equal(t, "[deleted]", replies[1].Author)
	require.Empty(t, replies[1].Permalink)
}

func TestParsePostMissingID(t *testing.T) {
	require.Nil(t, parsePost(json.RawMessage(`{"title":"no id"}`), "https://example.com"))
}
