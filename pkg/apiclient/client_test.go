package apiclient

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-gridform/pkg/adminerr"
	"github.com/goliatone/go-gridform/pkg/appctx"
	"github.com/goliatone/go-gridform/pkg/queryparam"
	"github.com/goliatone/go-gridform/pkg/testsupport"
	"github.com/goliatone/go-gridform/pkg/upload"
)

type captured struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

type backend struct {
	mu       sync.Mutex
	requests []captured
	status   int
	response string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var decoded map[string]any
	_ = json.Unmarshal(body, &decoded)

	b.mu.Lock()
	b.requests = append(b.requests, captured{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
		Body:   decoded,
	})
	status, response := b.status, b.response
	b.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, response)
}

func (b *backend) respond(status int, response string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status, b.response = status, response
}

func (b *backend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *backend) last(t *testing.T) captured {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(t, b.requests)
	return b.requests[len(b.requests)-1]
}

func newClient(t *testing.T, b *backend, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	client, err := New(srv.URL, append([]Option{WithHTTPClient(srv.Client())}, opts...)...)
	require.NoError(t, err)
	return client
}

func TestNewRequiresAbsoluteURL(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
	_, err = New("/api")
	assert.Error(t, err)
}

func TestListSendsStateAndToken(t *testing.T) {
	b := &backend{response: `{"data":{"items":[{"id":"m-1","name":"김철수"}],"total":31,"page":1,"size":10}}`}
	app := appctx.New(nil)
	app.SignIn(appctx.User{ID: "u-1"}, "tok-123")
	client := newClient(t, b, WithAppContext(app))

	page, err := client.List(testsupport.Context(), "members", queryparam.TableQueryState{
		Page:    1,
		Size:    10,
		Sort:    "career:desc",
		Filters: map[string]string{"grade": "A", "name": ""},
	})
	require.NoError(t, err)

	assert.Equal(t, 31, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "김철수", page.Items[0]["name"])

	req := b.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/members", req.Path)
	assert.Equal(t, "grade=A&page=1&size=10&sort=career%3Adesc", req.Query)
	assert.Equal(t, "Bearer tok-123", req.Auth)
}

func TestRequestContextTokenWins(t *testing.T) {
	b := &backend{response: `{"data":{"id":"m-1"}}`}
	fallback := appctx.New(nil)
	fallback.SignIn(appctx.User{ID: "u-1"}, "fallback")
	client := newClient(t, b, WithAppContext(fallback))

	scoped := appctx.New(nil)
	scoped.SignIn(appctx.User{ID: "u-2"}, "scoped")
	_, err := client.Get(appctx.WithContext(testsupport.Context(), scoped), "members", "m-1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer scoped", b.last(t).Auth)
}

func TestUpdateSendsVersionAndMapsConflict(t *testing.T) {
	b := &backend{status: http.StatusConflict, response: `{"error":{"message":"다른 사용자가 먼저 수정했습니다"}}`}
	client := newClient(t, b)

	_, err := client.Update(testsupport.Context(), "members", "m-1", 4, map[string]any{"name": "홍길동"})
	require.Error(t, err)
	assert.True(t, adminerr.IsAPI(err))
	assert.True(t, adminerr.IsConflict(err))
	assert.Equal(t, "다른 사용자가 먼저 수정했습니다", adminerr.UserMessage(err))

	req := b.last(t)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/api/members/m-1", req.Path)
	assert.Equal(t, float64(4), req.Body["version"])
	assert.Empty(t, req.Auth)
}

func TestCreateFieldErrors(t *testing.T) {
	b := &backend{status: http.StatusUnprocessableEntity, response: `{"message":"입력값을 확인하세요","errors":{"body.email":["이미 등록된 이메일입니다"]}}`}
	client := newClient(t, b)

	_, err := client.Create(testsupport.Context(), "members", map[string]any{"email": "a@b.co"})
	typed, ok := adminerr.As(err)
	require.True(t, ok)
	assert.Equal(t, adminerr.CodeInvalidRequest, typed.Code)
	assert.Equal(t, []string{"이미 등록된 이메일입니다"}, typed.Fields["body.email"])
}

func TestDeleteJoinsFailures(t *testing.T) {
	b := &backend{status: http.StatusNotFound, response: `{"message":"없는 데이터입니다"}`}
	client := newClient(t, b)

	err := client.Delete(testsupport.Context(), "engineers", "e-1", "e-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engineers/e-1")
	assert.Contains(t, err.Error(), "engineers/e-2")
	assert.Equal(t, 2, b.count())
}

func TestRevealFetcher(t *testing.T) {
	b := &backend{response: `{"data":{"value":"900101-1234567"}}`}
	client := newClient(t, b)

	value, err := client.RevealFetcher("members").Reveal(testsupport.Context(), appctx.User{ID: "u-1"}, "m-7", "residentNo")
	require.NoError(t, err)
	assert.Equal(t, "900101-1234567", value)

	req := b.last(t)
	assert.Equal(t, "/api/members/m-7/reveal", req.Path)
	assert.Equal(t, "field=residentNo", req.Query)
}

func TestPresignAndPersist(t *testing.T) {
	b := &backend{response: `{"data":[{"fileName":"a.png","key":"p-1/a.png","url":"https://bucket/a"}]}`}
	client := newClient(t, b)

	slots, err := client.Presign(testsupport.Context(), "p-1", []string{"a.png"}, "picture")
	require.NoError(t, err)
	assert.Equal(t, []upload.Slot{{Name: "a.png", Key: "p-1/a.png", URL: "https://bucket/a"}}, slots)

	req := b.last(t)
	assert.Equal(t, "/api/files/presign", req.Path)
	assert.Equal(t, "p-1", req.Body["parentId"])
	assert.Equal(t, []any{"a.png"}, req.Body["fileNames"])

	b.respond(http.StatusCreated, `{"data":null}`)
	require.NoError(t, client.FilesPersister("machine-projects").Persist(testsupport.Context(), "p-1", []string{"p-1/a.png"}, "picture"))
	req = b.last(t)
	assert.Equal(t, "/api/machine-projects/p-1/files", req.Path)
	assert.Equal(t, []any{"p-1/a.png"}, req.Body["keys"])
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := New(url)
	require.NoError(t, err)
	_, err = client.Get(testsupport.Context(), "members", "m-1")
	typed, ok := adminerr.As(err)
	require.True(t, ok)
	assert.Equal(t, adminerr.CodeTransport, typed.Code)
	assert.Equal(t, adminerr.GenericMessage, adminerr.UserMessage(err))
}
