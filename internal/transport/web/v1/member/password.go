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

// HandlerPassword обрабатывает POST /api/members/password/validate
type HandlerPassword struct {
	Log *log.Logger
}

type passwordValidateRequest struct {
	Password string `json:"password"`
}

// ValidatePassword godoc
// @Summary     Validate password strength
// @Description Отчёт о сложности пароля: valid + список нарушенных правил.
// @Tags        members
// @Accept      json
// @Produce     json
// @Param       request body passwordValidateRequest true "password"
// @Success     200 {object} domain.APIEnvelope{response=domain.PasswordValidation}
// @Failure     400 {object} domain.APIEnvelope
// @Router      /api/members/password/validate [post]
func (h *HandlerPassword) ValidatePassword(w http.ResponseWriter, r *http.Request) {
	const op = "member.password_validate"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req passwordValidateRequest
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logx.Error(h.Log, reqID, op, "bad json", err)
			v1.WriteDomainError(w, r, domain.ErrBadParams)
			return
		}
	} else {
		_ = r.ParseForm()
		req.Password = r.FormValue("password")
	}

	res := domain.ValidatePassword(req.Password)
	logx.Info(h.Log, reqID, op, "ok", "valid", res.Valid)
	v1.WriteOKResponse(w, r, res)
}
