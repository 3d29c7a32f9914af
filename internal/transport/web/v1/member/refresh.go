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

// HandlerRefresh обрабатывает POST /api/members/refresh
type HandlerRefresh struct {
	Log     *log.Logger
	Members domain.MembersRepo
	Tokens  domain.TokenService
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Refresh godoc
// @Summary     Rotate session tokens
// @Description Принимает refresh-токен, выдаёт новую пару; старый refresh перестаёт действовать.
// @Tags        members
// @Accept      json
// @Produce     json
// @Param       request body refreshRequest true "refreshToken"
// @Success     200 {object} domain.APIEnvelope{response=refreshResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/members/refresh [post]
func (h *HandlerRefresh) Refresh(w http.ResponseWriter, r *http.Request) {
	const op = "member.refresh"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req refreshRequest
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logx.Error(h.Log, reqID, op, "bad json", err)
			v1.WriteDomainError(w, r, domain.ErrBadParams)
			return
		}
	} else {
		_ = r.ParseForm()
		req.RefreshToken = r.FormValue("refreshToken")
	}

	if req.RefreshToken == "" {
		logx.Error(h.Log, reqID, op, "missing refresh token", domain.ErrBadParams)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	memberID, err := h.Tokens.ValidateRefresh(r.Context(), domain.Token(req.RefreshToken))
	if err != nil {
		logx.Error(h.Log, reqID, op, "validate refresh failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	// роль не хранится в refresh-токене, перечитываем участника
	m, err := h.Members.MemberByUUID(r.Context(), memberID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "member not found", err, "member", memberID)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	pair, err := h.Tokens.IssueSession(r.Context(), m.UUID, m.Role)
	if err != nil {
		logx.Error(h.Log, reqID, op, "issue session failed", err, "member", m.UUID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "member", m.UUID)
	v1.WriteOKResponse(w, r, refreshResponse{
		AccessToken:  string(pair.Access),
		RefreshToken: string(pair.Refresh),
	})
}
