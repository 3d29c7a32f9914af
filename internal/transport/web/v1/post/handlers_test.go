package post

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ozymandias089/devlog-api/internal/domain"
)

// fakePosts — PostsRepo в памяти, с имитацией гонки по slug
type fakePosts struct {
	bySlug       map[string]domain.Post
	nextID       int64
	conflictOnce bool // первый CreatePost вернёт ErrConflict
}

func newFakePosts() *fakePosts {
	return &fakePosts{bySlug: make(map[string]domain.Post)}
}

func (f *fakePosts) CreatePost(_ context.Context, author domain.MemberID, slug, title, content string) (domain.Post, error) {
	if f.conflictOnce {
		f.conflictOnce = false
		return domain.Post{}, domain.ErrConflict
	}
	if _, ok := f.bySlug[slug]; ok {
		return domain.Post{}, domain.ErrConflict
	}
	f.nextID++
	p := domain.Post{
		ID: f.nextID, AuthorUUID: author, Slug: slug, Title: title, Content: content,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.bySlug[slug] = p
	return p, nil
}

func (f *fakePosts) PostBySlug(_ context.Context, slug string) (domain.Post, error) {
	p, ok := f.bySlug[slug]
	if !ok {
		return domain.Post{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakePosts) IncrementViews(_ context.Context, slug string) (bool, error) {
	p, ok := f.bySlug[slug]
	if !ok {
		return false, nil
	}
	p.ViewCount++
	f.bySlug[slug] = p
	return true, nil
}

func (f *fakePosts) UpdatePost(_ context.Context, slug string, title, content *string) error {
	p, ok := f.bySlug[slug]
	if !ok {
		return domain.ErrNotFound
	}
	if title != nil {
		p.Title = *title
	}
	if content != nil {
		p.Content = *content
	}
	p.UpdatedAt = time.Now()
	f.bySlug[slug] = p
	return nil
}

func (f *fakePosts) DeletePost(_ context.Context, slug string) error {
	if _, ok := f.bySlug[slug]; !ok {
		return domain.ErrNotFound
	}
	delete(f.bySlug, slug)
	return nil
}

func (f *fakePosts) ListPosts(_ context.Context, page, size int) (domain.PostPage, error) {
	if size < 1 {
		size = 1
	}
	if size > 20 {
		size = 20
	}
	out := domain.PostPage{Page: page, Size: size, Posts: []domain.PostSummary{}}
	for _, p := range f.bySlug {
		out.Posts = append(out.Posts, domain.PostSummary{Slug: p.Slug, Title: p.Title})
		out.TotalElements++
	}
	return out, nil
}

var testLog = log.New(io.Discard, "", 0)

func newTestHandler(repo *fakePosts) *Handler {
	return &Handler{Log: testLog, Posts: repo}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) domain.APIEnvelope {
	t.Helper()
	var env domain.APIEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func authed(req *http.Request, sub domain.MemberID) *http.Request {
	ctx := domain.WithIdentity(req.Context(), domain.Identity{Subject: sub, Role: domain.RoleUser})
	return req.WithContext(ctx)
}

func TestCreatePost(t *testing.T) {
	repo := newFakePosts()
	h := newTestHandler(repo)
	author := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/posts",
		strings.NewReader(`{"title":"My First Post","content":"hello"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, authed(req, author))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "my-first-post", env.Response.(map[string]any)["slug"])
	assert.Equal(t, author, repo.bySlug["my-first-post"].AuthorUUID)
}

func TestCreatePostSlugCollisionRetries(t *testing.T) {
	repo := newFakePosts()
	repo.conflictOnce = true
	h := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodPost, "/api/posts",
		strings.NewReader(`{"title":"Clash","content":"x"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, authed(req, uuid.New()))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	slug := env.Response.(map[string]any)["slug"].(string)
	assert.True(t, strings.HasPrefix(slug, "clash-"), "slug %q must carry a suffix", slug)
	assert.Contains(t, repo.bySlug, slug)
}

func TestCreatePostRequiresBody(t *testing.T) {
	h := newTestHandler(newFakePosts())

	req := httptest.NewRequest(http.MethodPost, "/api/posts",
		strings.NewReader(`{"title":"  ","content":""}`))
	rec := httptest.NewRecorder()
	h.Create(rec, authed(req, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOneCountsViews(t *testing.T) {
	repo := newFakePosts()
	_, err := repo.CreatePost(context.Background(), uuid.New(), "hello", "Hello", "body")
	require.NoError(t, err)
	h := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/hello", nil)
	req.SetPathValue("slug", "hello")
	rec := httptest.NewRecorder()
	h.GetOne(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]any)
	assert.Equal(t, "hello", data["slug"])
	assert.Equal(t, float64(1), data["view_count"])
}

func TestGetOneMissing(t *testing.T) {
	h := newTestHandler(newFakePosts())

	req := httptest.NewRequest(http.MethodGet, "/api/posts/ghost", nil)
	req.SetPathValue("slug", "ghost")
	rec := httptest.NewRecorder()
	h.GetOne(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, domain.ErrCodeNotFound, env.Error.Code)
}

func TestUpdatePostAuthorOnly(t *testing.T) {
	repo := newFakePosts()
	author := uuid.New()
	_, err := repo.CreatePost(context.Background(), author, "mine", "Mine", "old content")
	require.NoError(t, err)
	h := newTestHandler(repo)

	do := func(sub domain.MemberID, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/api/posts/mine", strings.NewReader(body))
		req.SetPathValue("slug", "mine")
		rec := httptest.NewRecorder()
		h.Update(rec, authed(req, sub))
		return rec
	}

	t.Run("stranger is forbidden", func(t *testing.T) {
		rec := do(uuid.New(), `{"content":"hacked"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "old content", repo.bySlug["mine"].Content)
	})

	t.Run("author updates content", func(t *testing.T) {
		rec := do(author, `{"content":"new content"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "new content", repo.bySlug["mine"].Content)
	})

	t.Run("blank fields are ignored, slug stays", func(t *testing.T) {
		rec := do(author, `{"title":"   ","content":""}`)
		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "mine", env.Response.(map[string]any)["slug"])
		assert.Equal(t, "Mine", repo.bySlug["mine"].Title)
	})
}

func TestDeletePostAuthorOnly(t *testing.T) {
	repo := newFakePosts()
	author := uuid.New()
	_, err := repo.CreatePost(context.Background(), author, "mine", "Mine", "body")
	require.NoError(t, err)
	h := newTestHandler(repo)

	do := func(sub domain.MemberID) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/posts/mine", nil)
		req.SetPathValue("slug", "mine")
		rec := httptest.NewRecorder()
		h.Delete(rec, authed(req, sub))
		return rec
	}

	assert.Equal(t, http.StatusForbidden, do(uuid.New()).Code)
	assert.Contains(t, repo.bySlug, "mine")

	assert.Equal(t, http.StatusOK, do(author).Code)
	assert.NotContains(t, repo.bySlug, "mine")
}

func TestListPosts(t *testing.T) {
	repo := newFakePosts()
	for _, s := range []string{"a", "b", "c"} {
		_, err := repo.CreatePost(context.Background(), uuid.New(), s, strings.ToUpper(s), "body")
		require.NoError(t, err)
	}
	h := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/posts?page=0&size=2", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]any)
	assert.Equal(t, float64(3), data["totalElements"])
}
