package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	oaisim "github.com/zimeon/oaipmh-simulator"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestRepository(t *testing.T, name string) *oaisim.Repository {
	t.Helper()
	repo, err := oaisim.NewRepository(oaisim.Config{
		RepositoryName: name,
		Records: []oaisim.RecordConfig{
			{Identifier: "item1", Datestamp: "2001-01-01", Sets: []string{"a"}, Metadata: "<dc>1</dc>"},
		},
	})
	require.NoError(t, err)
	return repo
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.BaseURL == "" {
		opts.BaseURL = "http://example.org/oai"
	}
	opts.Now = func() time.Time { return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC) }
	return New(newTestRepository(t, "Test"), opts)
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestGet(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/oai?verb=Identify", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<repositoryName>Test</repositoryName>")
}

func TestProtocolErrorIsStatusOK(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/oai?verb=Nope", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `code="badVerb"`)
}

func TestPost(t *testing.T) {
	var tests = []struct {
		about  string
		noPost bool
		ctype  string
		body   string
		status int
		allow  string
		want   string
	}{
		{"form", false, "application/x-www-form-urlencoded", "verb=GetRecord&identifier=item1&metadataPrefix=oai_dc",
			http.StatusOK, "", "<metadata><dc>1</dc></metadata>"},
		{"form with charset", false, "application/x-www-form-urlencoded; charset=utf-8", "verb=Identify",
			http.StatusOK, "", "<Identify>"},
		{"json", false, "application/json", `{"verb": "Identify"}`, http.StatusUnsupportedMediaType, "", ""},
		{"no content type", false, "", "verb=Identify", http.StatusUnsupportedMediaType, "", ""},
		{"disabled", true, "application/x-www-form-urlencoded", "verb=Identify", http.StatusMethodNotAllowed, "GET", ""},
	}
	for _, tt := range tests {
		t.Run(tt.about, func(t *testing.T) {
			s := newTestServer(t, Options{NoPost: tt.noPost})
			req := httptest.NewRequest(http.MethodPost, "/oai", strings.NewReader(tt.body))
			if tt.ctype != "" {
				req.Header.Set("Content-Type", tt.ctype)
			}
			rec := serve(s, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.allow, rec.Header().Get("Allow"))
			if tt.want != "" {
				assert.Contains(t, rec.Body.String(), tt.want)
			}
		})
	}
}

func TestPostIgnoresQuery(t *testing.T) {
	s := newTestServer(t, Options{})
	req := httptest.NewRequest(http.MethodPost, "/oai?verb=ListSets", strings.NewReader("verb=Identify"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(s, req)
	assert.Contains(t, rec.Body.String(), `<request verb="Identify">`)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := serve(s, httptest.NewRequest(http.MethodPut, "/oai", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))
}

func TestPath(t *testing.T) {
	s := newTestServer(t, Options{Path: "pmh"})
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/pmh?verb=Identify", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = serve(s, httptest.NewRequest(http.MethodGet, "/oai?verb=Identify", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIndex(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<a href="http://example.org/oai">`)
	assert.Contains(t, body, `<a href="http://example.org/oai?verb=ListRecords&amp;metadataPrefix=oai_dc">`)
	assert.Contains(t, body, "OAI-PMH Simulator: Test")
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, Options{})
	serve(s, httptest.NewRequest(http.MethodGet, "/oai?verb=Identify", nil))
	serve(s, httptest.NewRequest(http.MethodGet, "/oai?verb=Identify", nil))
	serve(s, httptest.NewRequest(http.MethodGet, "/oai?verb=GetRecord&identifier=x&metadataPrefix=oai_dc", nil))
	serve(s, httptest.NewRequest(http.MethodGet, "/oai", nil))
	s.Swap(s.Repository())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `oaisim_requests_total{code="ok",verb="Identify"} 2`)
	assert.Contains(t, body, `oaisim_requests_total{code="idDoesNotExist",verb="GetRecord"} 1`)
	assert.Contains(t, body, `oaisim_requests_total{code="badVerb",verb="none"} 1`)
	assert.Contains(t, body, `oaisim_request_duration_seconds_count{verb="Identify"} 2`)
	assert.Contains(t, body, `oaisim_repository_reloads_total 1`)
}

func TestSwap(t *testing.T) {
	s := newTestServer(t, Options{})
	s.Swap(newTestRepository(t, "Other"))
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/oai?verb=Identify", nil))
	assert.Contains(t, rec.Body.String(), "<repositoryName>Other</repositoryName>")
}

func TestOverHTTP(t *testing.T) {
	s := newTestServer(t, Options{})
	ts := httptest.NewServer(s)
	defer ts.Close()

	resp, err := http.PostForm(ts.URL+"/oai", url.Values{"verb": {"ListSets"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(b), "<setSpec>a</setSpec>")
}
