package post

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Ozymandias089/devlog-api/internal/domain"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/logx"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/mw"
	v1 "github.com/Ozymandias089/devlog-api/internal/transport/web/v1"
)

type createRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type createResponse struct {
	Slug string `json:"slug"`
}

// Create godoc
// @Summary     Create post
// @Description Заголовок превращается в slug; при занятом slug добавляется случайный суффикс.
// @Tags        posts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body createRequest true "title, content"
// @Success     200 {object} domain.APIEnvelope{response=createResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/posts [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "post.create"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	id, ok := domain.IdentityFromCtx(r.Context())
	if !ok {
		logx.Error(h.Log, reqID, op, "no identity", domain.ErrUnauth)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		logx.Error(h.Log, reqID, op, "empty title or content", domain.ErrBadParams)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	slug := domain.Slugify(req.Title)
	p, err := h.Posts.CreatePost(r.Context(), id.Subject, slug, req.Title, req.Content)
	if errors.Is(err, domain.ErrConflict) {
		// занятый slug — пробуем один раз с суффиксом
		slug = slug + "-" + domain.SlugToken()
		p, err = h.Posts.CreatePost(r.Context(), id.Subject, slug, req.Title, req.Content)
	}
	if err != nil {
		logx.Error(h.Log, reqID, op, "create failed", err, "slug", slug)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "slug", p.Slug, "author", id.Subject)
	v1.WriteOKResponse(w, r, createResponse{Slug: p.Slug})
}
