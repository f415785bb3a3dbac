package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postscope/postscope/pkg/domain"
)

func arxivFeedXML(entries string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>ArXiv Query Results</title>
` + entries + `
</feed>`
}

func arxivEntry(title, summary, link string, published time.Time) string {
	return fmt.Sprintf(`  <entry>
    <title>%s</title>
    <summary>%s</summary>
    <published>%s</published>
    <link href="%s" rel="alternate" type="text/html"/>
  </entry>
`, title, summary, published.Format(time.RFC3339), link)
}

func TestArxivSource_Fetch(t *testing.T) {
	recent := time.Now().Add(-48 * time.Hour)
	stale := time.Now().AddDate(0, 0, -30)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all:"+DefaultArxivQuery, r.URL.Query().Get("search_query"))
		assert.Equal(t, "submittedDate", r.URL.Query().Get("sortBy"))
		assert.Equal(t, "10", r.URL.Query().Get("max_results"))

		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, arxivFeedXML(
			arxivEntry("Scaling Laws for Neural Language Models",
				"We study empirical scaling laws for language model performance.",
				"https://arxiv.org/abs/2001.08361", recent)+
				arxivEntry("Serverless Microservice Orchestration in Cloud Computing",
					"A study of distributed system scheduling on serverless platforms.",
					"https://arxiv.org/abs/2002.00001", recent)+
				arxivEntry("Old Paper", "Forgotten results.", "https://arxiv.org/abs/1901.00001", stale),
		))
	}))
	defer ts.Close()

	src := NewArxivSource("", 10, 5*time.Second)
	src.baseURL = ts.URL

	items, err := src.Fetch(context.Background(), 14)
	require.NoError(t, err)
	require.Len(t, items, 2) // stale paper filtered out

	assert.Equal(t, "Scaling Laws for Neural Language Models", items[0].Title)
	assert.Equal(t, domain.SourceArXiv, items[0].Source)
	assert.Equal(t, domain.CategoryAI, items[0].Category)
	assert.Equal(t, arxivBaseEngagement, items[0].Engagement)
	assert.Equal(t, "https://arxiv.org/abs/2001.08361", items[0].URL)
	assert.WithinDuration(t, recent, items[0].Published, time.Second)

	assert.Equal(t, domain.CategoryCloud, items[1].Category)
}

func TestArxivSource_FetchErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	src := NewArxivSource("custom query", 5, time.Second)
	src.baseURL = ts.URL

	_, err := src.Fetch(context.Background(), 7)
	assert.Error(t, err)
}

func TestArxivSource_Defaults(t *testing.T) {
	src := NewArxivSource("", 0, time.Second)
	assert.Equal(t, DefaultArxivQuery, src.query)
	assert.Equal(t, 30, src.maxResults)
	assert.Equal(t, domain.SourceArXiv, src.Name())
}
