package post

import (
	"net/http"

	"github.com/Ozymandias089/devlog-api/internal/domain"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/logx"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/mw"
	v1 "github.com/Ozymandias089/devlog-api/internal/transport/web/v1"
)

// GetOne godoc
// @Summary     Get post by slug
// @Description Счётчик просмотров увеличивается до чтения; 0 затронутых строк — 404.
// @Tags        posts
// @Produce     json
// @Param       slug path string true "post slug"
// @Success     200 {object} domain.APIEnvelope{data=domain.Post}
// @Failure     404 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/posts/{slug} [get]
func (h *Handler) GetOne(w http.ResponseWriter, r *http.Request) {
	const op = "post.get"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	slug := r.PathValue("slug")
	if slug == "" {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	touched, err := h.Posts.IncrementViews(r.Context(), slug)
	if err != nil {
		logx.Error(h.Log, reqID, op, "increment views failed", err, "slug", slug)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if !touched {
		logx.Error(h.Log, reqID, op, "not found", domain.ErrNotFound, "slug", slug)
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}

	p, err := h.Posts.PostBySlug(r.Context(), slug)
	if err != nil {
		logx.Error(h.Log, reqID, op, "fetch failed", err, "slug", slug)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "slug", slug, "views", p.ViewCount)
	v1.WriteOKData(w, r, p)
}
