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

// HandlerLogin обрабатывает POST /api/members/login
type HandlerLogin struct {
	Log     *log.Logger
	Members domain.MembersRepo
	Hasher  domain.PasswordHasher
	Tokens  domain.TokenService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Login godoc
// @Summary     Authenticate member
// @Description Возвращает пару access/refresh при валидных email и пароле.
// @Tags        members
// @Accept      json
// @Produce     json
// @Param       request body loginRequest true "email, password"
// @Success     200 {object} domain.APIEnvelope{response=loginResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/members/login [post]
func (h *HandlerLogin) Login(w http.ResponseWriter, r *http.Request) {
	const op = "member.login"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req loginRequest
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logx.Error(h.Log, reqID, op, "bad json", err)
			v1.WriteDomainError(w, r, domain.ErrBadParams)
			return
		}
	} else {
		_ = r.ParseForm()
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")
	}

	if req.Email == "" || req.Password == "" {
		logx.Error(h.Log, reqID, op, "empty email or password", domain.ErrBadParams)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	// неизвестный email и неверный пароль снаружи неразличимы
	m, err := h.Members.MemberByEmail(r.Context(), req.Email)
	if err != nil {
		logx.Error(h.Log, reqID, op, "member not found", err, "email", req.Email)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	ok, err := h.Hasher.Verify(req.Password, m.PassHash)
	if err != nil || !ok {
		logx.Error(h.Log, reqID, op, "password verify failed", err, "email", req.Email)
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
	v1.WriteOKResponse(w, r, loginResponse{
		AccessToken:  string(pair.Access),
		RefreshToken: string(pair.Refresh),
	})
}
