package gutenberg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageA = `<!DOCTYPE html>
<html><body>
<div class="pgdbbytitle">
<h2><a href="/ebooks/11">Alice's Adventures in Wonderland</a> (English)</h2>
<p>by <a href="/ebooks/author/7">Carroll, Lewis</a></p>
<h2><a href="/ebooks/17489">Les   Misérables</a> (French)</h2>
<h2><a href="/ebooks/1260">Jane Eyre: An Autobiography</a> (English)</h2>
<h2>(English) entry without a link</h2>
<h2><a href="/ebooks/2701">Moby Dick</a> (English)</h2>
</div>
</body></html>`

const pageM = `<html><body>
<h2><a href="/ebooks/15">Moby Dick</a> (English)</h2>
<h2><a href="/ebooks/84/">Frankenstein</a> (English)</h2>
</body></html>`

const filesPage = `<html><body>
<table>
<tr><th>Name</th></tr>
<tr><td><a href="../">Parent Directory</a></td></tr>
<tr><td><a href="2701-h/">2701-h/</a></td></tr>
<tr><td><a href="2701-0.zip">2701-0.zip</a> <a href="ignored.txt">x</a></td></tr>
<tr><td><a href="2701-0.txt">2701-0.txt</a></td></tr>
<tr><td><a href="2701-8.txt">2701-8.txt</a></td></tr>
</table>
</body></html>`

func newTestServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/browse/titles/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		switch strings.TrimPrefix(r.URL.Path, "/browse/titles/") {
		case "a":
			w.Write([]byte(pageA))
		case "m":
			w.Write([]byte(pageM))
		case "b":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			w.Write([]byte(`<html><body><p>No titles.</p></body></html>`))
		}
	})
	mux.HandleFunc("/files/2701/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(filesPage))
	})
	mux.HandleFunc("/files/99/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><table><tr><td><a href="99.epub">epub</a></td></tr></table></body></html>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestParseTitles(t *testing.T) {
	got, err := ParseTitles([]byte(pageA), "English")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Alice's Adventures in Wonderland": "11",
		"Jane Eyre: An Autobiography":      "1260",
		"Moby Dick":                        "2701",
	}, got)

	french, err := ParseTitles([]byte(pageA), "French")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Les Misérables": "17489"}, french)
}

func TestParseTitlesAnyLanguage(t *testing.T) {
	got, err := ParseTitles([]byte(pageA), "")
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestFetchAllTitles(t *testing.T) {
	srv, hits := newTestServer(t)

	var calls []int
	c := NewClient(
		WithBaseURL(srv.URL),
		WithRateLimit(0),
		WithWorkers(3),
		WithProgress(func(done, total int) {
			assert.Equal(t, len(Letters), total)
			calls = append(calls, done)
		}),
	)

	got, err := c.FetchAllTitles(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"Alice's Adventures in Wonderland": "11",
		"Jane Eyre: An Autobiography":      "1260",
		"Moby Dick":                        "15",
		"Frankenstein":                     "84",
	}, got)
	assert.Equal(t, int32(len(Letters)), hits.Load())
	require.Len(t, calls, len(Letters))
	assert.Equal(t, len(Letters), calls[len(calls)-1])
}

func TestFetchAllTitlesTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))
	_, err := c.FetchAllTitles(context.Background())
	assert.Error(t, err)
}

func TestFetchAllTitlesCancelled(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))
	_, err := c.FetchAllTitles(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchTitlesStatus(t *testing.T) {
	srv, _ := newTestServer(t)
	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))

	_, err := c.FetchTitles(context.Background(), "b")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}

func TestResolveDownloadURL(t *testing.T) {
	srv, _ := newTestServer(t)
	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))

	got, err := c.ResolveDownloadURL(context.Background(), "2701")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/files/2701/2701-0.txt", got)
}

func TestResolveDownloadURLNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))

	for _, id := range []string{"99", "404", ""} {
		_, err := c.ResolveDownloadURL(context.Background(), id)
		assert.ErrorIs(t, err, ErrNotFound, "id %q", id)
	}
}

func TestSourceID(t *testing.T) {
	tests := map[string]string{
		"/ebooks/2701":  "2701",
		"/ebooks/2701/": "2701",
		"2701":          "2701",
		"":              "",
		"/":             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, sourceID(in), "href %q", in)
	}
}
