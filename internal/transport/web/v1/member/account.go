package member

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/Ozymandias089/devlog-api/internal/domain"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/logx"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/mw"
	v1 "github.com/Ozymandias089/devlog-api/internal/transport/web/v1"
)

// HandlerAccount обрабатывает DELETE /api/members/me и PATCH /api/members/me/username
type HandlerAccount struct {
	Log     *log.Logger
	Members domain.MembersRepo
	Tokens  domain.TokenService
}

type usernameRequest struct {
	Username string `json:"username"`
}

type usernameResponse struct {
	Username string `json:"username"`
}

// Unregister godoc
// @Summary     Delete own account
// @Description Удаляет участника вместе с его постами и отзывает сессию.
// @Tags        members
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} domain.APIEnvelope{data=string}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/members/me [delete]
func (h *HandlerAccount) Unregister(w http.ResponseWriter, r *http.Request) {
	const op = "member.unregister"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	id, ok := domain.IdentityFromCtx(r.Context())
	if !ok {
		logx.Error(h.Log, reqID, op, "no identity", domain.ErrUnauth)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	if err := h.Members.DeleteMember(r.Context(), id.Subject); err != nil {
		logx.Error(h.Log, reqID, op, "delete member failed", err, "member", id.Subject)
		v1.WriteDomainError(w, r, err)
		return
	}

	// сессия мёртвого аккаунта не должна пережить его
	if err := h.Tokens.RevokeSession(r.Context(), id.Subject, id.RawToken); err != nil {
		logx.Error(h.Log, reqID, op, "revoke after delete failed", err, "member", id.Subject)
	}

	logx.Info(h.Log, reqID, op, "ok", "member", id.Subject)
	v1.WriteOKData(w, r, "deleted")
}

// UpdateUsername godoc
// @Summary     Change username
// @Description Новое имя: 3-20 символов [A-Za-z0-9_-], должно быть свободно.
// @Tags        members
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body usernameRequest true "username"
// @Success     200 {object} domain.APIEnvelope{response=usernameResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     409 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/members/me/username [patch]
func (h *HandlerAccount) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	const op = "member.update_username"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	id, ok := domain.IdentityFromCtx(r.Context())
	if !ok {
		logx.Error(h.Log, reqID, op, "no identity", domain.ErrUnauth)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	var req usernameRequest
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logx.Error(h.Log, reqID, op, "bad json", err)
			v1.WriteDomainError(w, r, domain.ErrBadParams)
			return
		}
	} else {
		_ = r.ParseForm()
		req.Username = r.FormValue("username")
	}

	if !domain.ValidUsername(req.Username) {
		logx.Error(h.Log, reqID, op, "invalid username", domain.ErrBadParams, "username", req.Username)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	taken, err := h.Members.UsernameTaken(r.Context(), req.Username)
	if err != nil {
		logx.Error(h.Log, reqID, op, "uniqueness check failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}
	if taken {
		logx.Error(h.Log, reqID, op, "username taken", domain.ErrConflict, "username", req.Username)
		v1.WriteDomainError(w, r, domain.ErrConflict)
		return
	}

	if err := h.Members.UpdateUsername(r.Context(), id.Subject, req.Username); err != nil {
		logx.Error(h.Log, reqID, op, "update failed", err, "member", id.Subject)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "member", id.Subject, "username", req.Username)
	v1.WriteOKResponse(w, r, usernameResponse{Username: req.Username})
}
