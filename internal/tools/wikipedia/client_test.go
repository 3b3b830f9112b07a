package wikipedia

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/soyeahso/toolchat/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWiki serves canned MediaWiki responses keyed by title or search term.
func fakeWiki(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/en/w/api.php", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "toolchat/")

		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("formatversion"))
		w.Header().Set("Content-Type", "application/json")

		if q.Get("action") == "parse" {
			assert.Equal(t, "links", q.Get("prop"))
			assert.Equal(t, "Mercury", q.Get("page"))
			// Page order, not title order; the category link is skipped.
			links := []string{`{"ns":14,"title":"Category:Disambiguation pages"}`}
			for i := 11; i >= 0; i-- {
				links = append(links, fmt.Sprintf(`{"ns":0,"title":"Mercury %d","exists":true}`, i))
			}
			fmt.Fprintf(w, `{"parse":{"title":"Mercury","pageid":2,"links":[%s]}}`, strings.Join(links, ","))
			return
		}
		assert.Equal(t, "query", q.Get("action"))

		if q.Get("list") == "search" {
			switch q.Get("srsearch") {
			case "golang":
				fmt.Fprint(w, `{"query":{"searchinfo":{"totalhits":1},"search":[{"ns":0,"title":"Go (programming language)"}]}}`)
			default:
				fmt.Fprint(w, `{"query":{"searchinfo":{"totalhits":0},"search":[]}}`)
			}
			return
		}

		assert.Equal(t, "extracts|info|pageprops", q.Get("prop"))
		assert.Equal(t, "url", q.Get("inprop"))
		switch q.Get("titles") {
		case "Go (programming language)":
			assert.Equal(t, "2", q.Get("exsentences"))
			fmt.Fprint(w, `{"batchcomplete":true,"query":{"pages":[{"pageid":25039021,"ns":0,
				"title":"Go (programming language)","extract":"Go is a language. It is compiled.",
				"fullurl":"https://en.wikipedia.org/wiki/Go_(programming_language)"}]}}`)
		case "Mercury":
			fmt.Fprint(w, `{"query":{"pages":[{"pageid":2,"ns":0,"title":"Mercury",
				"pageprops":{"disambiguation":""},"extract":"Mercury may refer to:"}]}}`)
		case "":
			fmt.Fprint(w, `{"query":{"pages":[{"title":"","invalid":true,"invalidreason":"The requested page title is empty"}]}}`)
		case "Broken":
			fmt.Fprint(w, `{"error":{"code":"internal_api_error","info":"Something broke"}}`)
		default:
			fmt.Fprintf(w, `{"query":{"pages":[{"ns":0,"title":%q,"missing":true}]}}`, q.Get("titles"))
		}
	}))
}

func newTestClient(srv *httptest.Server) *APIClient {
	return NewAPIClient(srv.URL + "/{lang}/w/api.php")
}

func TestAPIClientSummary(t *testing.T) {
	srv := fakeWiki(t)
	defer srv.Close()

	page, err := newTestClient(srv).Summary(context.Background(), "en", "Go (programming language)", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(25039021), page.PageID)
	assert.Equal(t, "Go (programming language)", page.Title)
	assert.Equal(t, "Go is a language. It is compiled.", page.Extract)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Go_(programming_language)", page.URL)
}

func TestAPIClientSearchFallback(t *testing.T) {
	srv := fakeWiki(t)
	defer srv.Close()

	page, err := newTestClient(srv).Summary(context.Background(), "en", "golang", 2)
	require.NoError(t, err)
	assert.Equal(t, "Go (programming language)", page.Title)
}

func TestAPIClientDisambiguation(t *testing.T) {
	srv := fakeWiki(t)
	defer srv.Close()

	_, err := newTestClient(srv).Summary(context.Background(), "en", "Mercury", 3)
	var dis *DisambiguationError
	require.ErrorAs(t, err, &dis)
	assert.Equal(t, "Mercury", dis.Title)
	require.Len(t, dis.Options, 12)
	assert.Equal(t, "Mercury 11", dis.Options[0])
	assert.Equal(t, "Mercury 0", dis.Options[11])
}

func TestAPIClientMissing(t *testing.T) {
	srv := fakeWiki(t)
	defer srv.Close()

	_, err := newTestClient(srv).Summary(context.Background(), "en", "Xyzzyplugh", 3)
	assert.True(t, errors.Is(err, ErrPageNotFound))
}

func TestAPIClientInvalidTitle(t *testing.T) {
	srv := fakeWiki(t)
	defer srv.Close()

	_, err := newTestClient(srv).Summary(context.Background(), "en", "", 3)
	assert.True(t, errors.Is(err, ErrPageNotFound))
}

func TestAPIClientAPIError(t *testing.T) {
	srv := fakeWiki(t)
	defer srv.Close()

	_, err := newTestClient(srv).Summary(context.Background(), "en", "Broken", 3)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrPageNotFound))
	assert.Contains(t, err.Error(), "internal_api_error")
}

func TestAdapterOverHTTP(t *testing.T) {
	srv := fakeWiki(t)
	defer srv.Close()

	a := NewAdapter(newTestClient(srv), 10, 3, silentLog())
	f, ok := a.GetSummary(context.Background(), Request{Query: "Mercury"}).(*tools.Failure)
	require.True(t, ok)
	assert.Equal(t, "DisambiguationError", f.Error)
	assert.Len(t, f.Options, 10)

	f, ok = a.GetSummary(context.Background(), Request{Query: "Xyzzyplugh"}).(*tools.Failure)
	require.True(t, ok)
	assert.Equal(t, "PageError", f.Error)
}
