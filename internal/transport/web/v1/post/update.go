package post

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Ozymandias089/devlog-api/internal/domain"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/logx"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/mw"
	v1 "github.com/Ozymandias089/devlog-api/internal/transport/web/v1"
)

type updateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type updateResponse struct {
	Slug string `json:"slug"`
}

// Update godoc
// @Summary     Update post
// @Description Только автор. Поле применяется, если непустое и отличается; slug не меняется.
// @Tags        posts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       slug    path string        true "post slug"
// @Param       request body updateRequest true "title, content (optional)"
// @Success     200 {object} domain.APIEnvelope{response=updateResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/posts/{slug} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "post.update"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	id, ok := domain.IdentityFromCtx(r.Context())
	if !ok {
		logx.Error(h.Log, reqID, op, "no identity", domain.ErrUnauth)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	slug := r.PathValue("slug")
	if slug == "" {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	p, err := h.Posts.PostBySlug(r.Context(), slug)
	if err != nil {
		logx.Error(h.Log, reqID, op, "fetch failed", err, "slug", slug)
		v1.WriteDomainError(w, r, err)
		return
	}
	if p.AuthorUUID != id.Subject {
		logx.Error(h.Log, reqID, op, "not the author", domain.ErrForbidden, "slug", slug, "member", id.Subject)
		v1.WriteDomainError(w, r, domain.ErrForbidden)
		return
	}

	// поле меняется только когда прислано непустым и отличается от текущего
	var title, content *string
	if t := strings.TrimSpace(req.Title); t != "" && t != p.Title {
		title = &t
	}
	if c := req.Content; strings.TrimSpace(c) != "" && c != p.Content {
		content = &c
	}
	if title == nil && content == nil {
		logx.Info(h.Log, reqID, op, "nothing to update", "slug", slug)
		v1.WriteOKResponse(w, r, updateResponse{Slug: p.Slug})
		return
	}

	if err := h.Posts.UpdatePost(r.Context(), slug, title, content); err != nil {
		logx.Error(h.Log, reqID, op, "update failed", err, "slug", slug)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "slug", p.Slug)
	v1.WriteOKResponse(w, r, updateResponse{Slug: p.Slug})
}
