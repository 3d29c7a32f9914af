package member

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/Ozymandias089/devlog-api/internal/domain"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/logx"
	"github.com/Ozymandias089/devlog-api/internal/transport/web/mw"
	v1 "github.com/Ozymandias089/devlog-api/internal/transport/web/v1"
)

// HandlerReset обрабатывает /api/members/password-reset/*
type HandlerReset struct {
	Log      *log.Logger
	Members  domain.MembersRepo
	Hasher   domain.PasswordHasher
	Tokens   domain.TokenService
	Mailer   domain.Mailer
	ResetURL string // фронтовая страница сброса, токен уходит query-параметром
}

type resetRequestBody struct {
	Email string `json:"email"`
}

type resetIssueResponse struct {
	ResetToken string `json:"resetToken"`
}

type resetVerifyResponse struct {
	Valid bool `json:"valid"`
}

type resetConfirmBody struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// Request godoc
// @Summary     Request password reset
// @Description Отправляет ссылку сброса на email. Ответ одинаков для известного и неизвестного адреса.
// @Tags        members
// @Accept      json
// @Produce     json
// @Param       request body resetRequestBody true "email"
// @Success     200 {object} domain.APIEnvelope{data=string}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/members/password-reset/request [post]
func (h *HandlerReset) Request(w http.ResponseWriter, r *http.Request) {
	const op = "member.reset_request"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req resetRequestBody
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
	}

	if !domain.ValidEmail(req.Email) {
		logx.Error(h.Log, reqID, op, "invalid email", domain.ErrBadParams, "email", req.Email)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	m, err := h.Members.MemberByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// не раскрываем, зарегистрирован ли адрес
			logx.Info(h.Log, reqID, op, "unknown email, silent ok", "email", req.Email)
			v1.WriteOKData(w, r, "sent")
			return
		}
		logx.Error(h.Log, reqID, op, "lookup failed", err, "email", req.Email)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	token, err := h.Tokens.IssuePasswordResetToken(r.Context(), m.UUID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "issue reset token failed", err, "member", m.UUID)
		v1.WriteDomainError(w, r, err)
		return
	}

	link := h.ResetURL + "?token=" + url.QueryEscape(string(token))
	if err := h.Mailer.SendPasswordReset(r.Context(), m.Email, link); err != nil {
		logx.Error(h.Log, reqID, op, "send mail failed", err, "member", m.UUID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "member", m.UUID)
	v1.WriteOKData(w, r, "sent")
}

// Issue godoc
// @Summary     Issue password reset token (authenticated)
// @Description Выдаёт reset-токен текущему участнику. Прежний токен перестаёт действовать.
// @Tags        members
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} domain.APIEnvelope{response=resetIssueResponse}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/members/password-reset/issue [post]
func (h *HandlerReset) Issue(w http.ResponseWriter, r *http.Request) {
	const op = "member.reset_issue"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	id, ok := domain.IdentityFromCtx(r.Context())
	if !ok {
		logx.Error(h.Log, reqID, op, "no identity", domain.ErrUnauth)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	token, err := h.Tokens.IssuePasswordResetToken(r.Context(), id.Subject)
	if err != nil {
		logx.Error(h.Log, reqID, op, "issue reset token failed", err, "member", id.Subject)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "member", id.Subject)
	v1.WriteOKResponse(w, r, resetIssueResponse{ResetToken: string(token)})
}

// Verify godoc
// @Summary     Verify password reset token
// @Description Проверяет reset-токен без его расходования.
// @Tags        members
// @Produce     json
// @Param       token query string true "reset token"
// @Success     200 {object} domain.APIEnvelope{response=resetVerifyResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/members/password-reset/verify [get]
func (h *HandlerReset) Verify(w http.ResponseWriter, r *http.Request) {
	const op = "member.reset_verify"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	raw := v1.TokenFromRequest(r)
	if raw == "" {
		logx.Error(h.Log, reqID, op, "missing token", domain.ErrBadParams)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	_, err := h.Tokens.ValidatePasswordReset(r.Context(), domain.Token(raw))
	switch {
	case err == nil:
		logx.Info(h.Log, reqID, op, "ok", "valid", true)
		v1.WriteOKResponse(w, r, resetVerifyResponse{Valid: true})
	case errors.Is(err, domain.ErrTokenInvalid):
		logx.Info(h.Log, reqID, op, "ok", "valid", false)
		v1.WriteOKResponse(w, r, resetVerifyResponse{Valid: false})
	default:
		logx.Error(h.Log, reqID, op, "verify failed", err)
		v1.WriteDomainError(w, r, err)
	}
}

// Confirm godoc
// @Summary     Confirm password reset
// @Description Меняет пароль по действующему reset-токену и расходует его. Refresh-сессия сбрасывается.
// @Tags        members
// @Accept      json
// @Produce     json
// @Param       request body resetConfirmBody true "token, newPassword"
// @Success     200 {object} domain.APIEnvelope{data=string}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/members/password-reset/confirm [post]
func (h *HandlerReset) Confirm(w http.ResponseWriter, r *http.Request) {
	const op = "member.reset_confirm"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req resetConfirmBody
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logx.Error(h.Log, reqID, op, "bad json", err)
			v1.WriteDomainError(w, r, domain.ErrBadParams)
			return
		}
	} else {
		_ = r.ParseForm()
		req.Token = r.FormValue("token")
		req.NewPassword = r.FormValue("newPassword")
	}

	if req.Token == "" || !domain.ValidPassword(req.NewPassword) {
		logx.Error(h.Log, reqID, op, "bad token or weak password", domain.ErrBadParams)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	cl, err := h.Tokens.ValidatePasswordReset(r.Context(), domain.Token(req.Token))
	if err != nil {
		logx.Error(h.Log, reqID, op, "validate reset failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}
	memberID := cl.Subject

	hashStr, err := h.Hasher.Hash(req.NewPassword)
	if err != nil {
		logx.Error(h.Log, reqID, op, "hash failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	if err := h.Members.UpdatePassword(r.Context(), memberID, hashStr); err != nil {
		logx.Error(h.Log, reqID, op, "update password failed", err, "member", memberID)
		v1.WriteDomainError(w, r, err)
		return
	}

	// сбрасываем refresh-сессию: все устройства заново логинятся
	if err := h.Tokens.ConsumePasswordReset(r.Context(), memberID); err != nil {
		logx.Error(h.Log, reqID, op, "consume reset failed", err, "member", memberID)
	}

	logx.Info(h.Log, reqID, op, "ok", "member", memberID)
	v1.WriteOKData(w, r, "password updated")
}
