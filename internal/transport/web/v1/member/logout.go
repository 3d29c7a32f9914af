package member

import (
	"log"
	"net/http"

	"github.com/Ozymandias089/devlog-api/internal/domain"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/logx"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/mw"
	v1 "github.com/Ozymandias089/devlog-api/internal/transport/web/v1"
)

// HandlerLogout обрабатывает POST /api/members/logout
type HandlerLogout struct {
	Log    *log.Logger
	Tokens domain.TokenService
}

type logoutResponse struct {
	Revoked string `json:"revoked"` // uuid участника
}

// Logout godoc
// @Summary     Logout (revoke session)
// @Description Удаляет refresh-токен и заносит текущий access в blacklist до его exp.
// @Tags        members
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} domain.APIEnvelope{response=logoutResponse}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/members/logout [post]
func (h *HandlerLogout) Logout(w http.ResponseWriter, r *http.Request) {
	const op = "member.logout"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	id, ok := domain.IdentityFromCtx(r.Context())
	if !ok {
		logx.Error(h.Log, reqID, op, "no identity", domain.ErrUnauth)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	if err := h.Tokens.RevokeSession(r.Context(), id.Subject, id.RawToken); err != nil {
		logx.Error(h.Log, reqID, op, "revoke failed", err, "member", id.Subject)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "member", id.Subject)
	v1.WriteOKResponse(w, r, logoutResponse{Revoked: id.Subject.String()})
}
