package member

import (
	"errors"
	"log"
	"net/http"

	"github.com/Ozymandias089/devlog-api/internal/domain"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/logx"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/mw"
	v1 "github.com/Ozymandias089/devlog-api/internal/transport/web/v1"
)

// HandlerCheckEmail обрабатывает GET /api/members/check-email
type HandlerCheckEmail struct {
	Log     *log.Logger
	Members domain.MembersRepo
}

type checkEmailResponse struct {
	Available bool `json:"available"`
}

// CheckEmail godoc
// @Summary     Check email availability
// @Description Формат email + свободен ли адрес.
// @Tags        members
// @Produce     json
// @Param       email query string true "email"
// @Success     200 {object} domain.APIEnvelope{response=checkEmailResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/members/check-email [get]
func (h *HandlerCheckEmail) CheckEmail(w http.ResponseWriter, r *http.Request) {
	const op = "member.check_email"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	email := r.URL.Query().Get("email")
	if !domain.ValidEmail(email) {
		logx.Error(h.Log, reqID, op, "invalid email", domain.ErrBadParams, "email", email)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	_, err := h.Members.MemberByEmail(r.Context(), email)
	switch {
	case err == nil:
		logx.Info(h.Log, reqID, op, "ok", "email", email, "available", false)
		v1.WriteOKResponse(w, r, checkEmailResponse{Available: false})
	case errors.Is(err, domain.ErrNotFound):
		logx.Info(h.Log, reqID, op, "ok", "email", email, "available", true)
		v1.WriteOKResponse(w, r, checkEmailResponse{Available: true})
	default:
		logx.Error(h.Log, reqID, op, "lookup failed", err, "email", email)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
	}
}
