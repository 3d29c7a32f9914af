package post

import (
	"net/http"
	"strconv"

	"github.com/Ozymandias089/devlog-api/internal/domain"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/logx"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/mw"
	v1 "github.com/Ozymandias089/devlog-api/internal/transport/web/v1"
)

// List godoc
// @Summary     List posts
// @Description Лента свежих постов, новые сверху. size ограничен 1..20.
// @Tags        posts
// @Produce     json
// @Param       page query int false "page (0-based)"
// @Param       size query int false "page size"
// @Success     200 {object} domain.APIEnvelope{data=domain.PostPage}
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/posts [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "post.list"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	page := 0
	if s := r.URL.Query().Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			page = n
		}
	}
	size := 10
	if s := r.URL.Query().Get("size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			size = n // репозиторий прижмёт к 1..20
		}
	}

	pp, err := h.Posts.ListPosts(r.Context(), page, size)
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err, "page", page, "size", size)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "page", pp.Page, "total", pp.TotalElements)
	v1.WriteOKData(w, r, pp)
}
