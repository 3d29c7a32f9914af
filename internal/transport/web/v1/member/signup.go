package member

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"

	"github.com/Ozymandias089/devlog-api/internal/domain"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/logx"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/mw"
	v1 "github.com/Ozymandias089/devlog-api/internal/transport/web/v1"
)

// HandlerSignup обрабатывает POST /api/members/signup
type HandlerSignup struct {
	Log     *log.Logger
	Members domain.MembersRepo
	Hasher  domain.PasswordHasher
	Tokens  domain.TokenService
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupResponse struct {
	UUID         string `json:"uuid"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Signup godoc
// @Summary     Register new member
// @Description Регистрация: проверка email и сложности пароля, генерация username, выдача пары токенов.
// @Tags        members
// @Accept      json
// @Produce     json
// @Param       request body signupRequest true "email, password"
// @Success     200 {object} domain.APIEnvelope{response=signupResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     409 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/members/signup [post]
func (h *HandlerSignup) Signup(w http.ResponseWriter, r *http.Request) {
	const op = "member.signup"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req signupRequest
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

	// 1) Валидация email и сложности пароля
	if !domain.ValidEmail(req.Email) {
		logx.Error(h.Log, reqID, op, "invalid email", domain.ErrBadParams, "email", req.Email)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if !domain.ValidPassword(req.Password) {
		logx.Error(h.Log, reqID, op, "weak password", domain.ErrBadParams)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	// 2) Хэш пароля
	hashStr, err := h.Hasher.Hash(req.Password)
	if err != nil {
		logx.Error(h.Log, reqID, op, "hash failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	// 3) Сгенерированный username вида User-%06d, с проверкой занятости
	username, err := h.pickUsername(r)
	if err != nil {
		logx.Error(h.Log, reqID, op, "pick username failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	// 4) Создаём участника; дубль email — это конфликт, а не bad params
	m, err := h.Members.CreateMember(r.Context(), req.Email, hashStr, username, domain.RoleUser)
	if err != nil {
		logx.Error(h.Log, reqID, op, "create member failed", err, "email", req.Email)
		v1.WriteDomainError(w, r, err)
		return
	}

	// 5) Сессия сразу после регистрации
	pair, err := h.Tokens.IssueSession(r.Context(), m.UUID, m.Role)
	if err != nil {
		logx.Error(h.Log, reqID, op, "issue session failed", err, "member", m.UUID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "member", m.UUID, "username", m.Username)
	v1.WriteOKResponse(w, r, signupResponse{
		UUID:         m.UUID.String(),
		Email:        m.Email,
		Username:     m.Username,
		AccessToken:  string(pair.Access),
		RefreshToken: string(pair.Refresh),
	})
}

// pickUsername подбирает свободное имя User-NNNNNN
func (h *HandlerSignup) pickUsername(r *http.Request) (string, error) {
	for i := 0; i < 10; i++ {
		name := fmt.Sprintf("User-%06d", rand.Intn(1000000))
		taken, err := h.Members.UsernameTaken(r.Context(), name)
		if err != nil {
			return "", err
		}
		if !taken {
			return name, nil
		}
	}
	return "", fmt.Errorf("no free username after 10 attempts")
}
