package post

import (
	"net/http"

	"github.com/Ozymandias089/devlog-api/internal/domain"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/logx"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/mw"
	v1 "github.com/Ozymandias089/devlog-api/internal/transport/web/v1"
)

// Delete godoc
// @Summary     Delete post
// @Description Только автор.
// @Tags        posts
// @Produce     json
// @Security    BearerAuth
// @Param       slug path string true "post slug"
// @Success     200 {object} domain.APIEnvelope{data=string}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     403 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/posts/{slug} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "post.delete"
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

	if err := h.Posts.DeletePost(r.Context(), slug); err != nil {
		logx.Error(h.Log, reqID, op, "delete failed", err, "slug", slug)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "slug", slug)
	v1.WriteOKData(w, r, "deleted")
}
