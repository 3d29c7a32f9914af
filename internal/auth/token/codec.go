package token

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Ozymandias089/devlog-api/internal/domain"
)

// Codec выпускает и разбирает подписанные токены (HS256).
// Никакого I/O: чистая подпись/верификация; ключ неизменяем после создания.
type Codec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
}

const resetTypeClaim = "password_reset"

// Ensure: Codec implements domain.TokenCodec
var _ domain.TokenCodec = (*Codec)(nil)

// NewCodec: секрет приходит из конфига в base64 (как jwt.secret в исходном API)
func NewCodec(secretBase64, issuer string, accessTTL, refreshTTL, resetTTL time.Duration) (*Codec, error) {
	secret, err := base64.StdEncoding.DecodeString(secretBase64)
	if err != nil {
		return nil, fmt.Errorf("decode jwt secret: %w", err)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("empty jwt secret")
	}
	return &Codec{
		secret:     secret,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		resetTTL:   resetTTL,
	}, nil
}

// внутренний тип для подписи/парсинга
type jwtClaims struct {
	Roles string `json:"roles,omitempty"` // только access
	Type  string `json:"type,omitempty"`  // только password_reset
	jwt.RegisteredClaims
}

func (c *Codec) sign(sub domain.MemberID, ttl time.Duration, fill func(*jwtClaims)) (domain.Token, domain.TokenClaims, error) {
	now := time.Now().UTC()
	cl := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   sub.String(),
			// jti различает токены с одинаковыми sub/iat (два логина в одну секунду)
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if fill != nil {
		fill(&cl)
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, cl)
	raw, err := t.SignedString(c.secret)
	if err != nil {
		return "", domain.TokenClaims{}, err
	}

	out, err := claimsToDomain(&cl)
	if err != nil {
		return "", domain.TokenClaims{}, err
	}
	return domain.Token(raw), out, nil
}

func (c *Codec) IssueAccess(sub domain.MemberID, role domain.Role) (domain.Token, domain.TokenClaims, error) {
	return c.sign(sub, c.accessTTL, func(cl *jwtClaims) { cl.Roles = string(role) })
}

func (c *Codec) IssueRefresh(sub domain.MemberID) (domain.Token, domain.TokenClaims, error) {
	return c.sign(sub, c.refreshTTL, nil)
}

func (c *Codec) IssuePasswordReset(sub domain.MemberID) (domain.Token, domain.TokenClaims, error) {
	return c.sign(sub, c.resetTTL, func(cl *jwtClaims) { cl.Type = resetTypeClaim })
}

// Parse валидирует подпись, структуру и сроки. Любой отказ — domain.ErrTokenInvalid:
// различать причины наружу нельзя (утечка оракула).
func (c *Codec) Parse(raw domain.Token) (domain.TokenClaims, error) {
	var out jwtClaims
	tkn, err := jwt.ParseWithClaims(string(raw), &out, func(token *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid {
		return domain.TokenClaims{}, domain.ErrTokenInvalid
	}
	cl, err := claimsToDomain(&out)
	if err != nil {
		return domain.TokenClaims{}, domain.ErrTokenInvalid
	}
	return cl, nil
}

// claimsToDomain определяет вид токена по claims:
// type=password_reset -> reset, roles присутствует -> access, иначе refresh.
func claimsToDomain(cl *jwtClaims) (domain.TokenClaims, error) {
	sub, err := uuid.Parse(cl.Subject)
	if err != nil {
		return domain.TokenClaims{}, fmt.Errorf("bad subject: %w", err)
	}
	if cl.IssuedAt == nil || cl.ExpiresAt == nil {
		return domain.TokenClaims{}, fmt.Errorf("missing iat/exp")
	}

	out := domain.TokenClaims{
		Subject:   sub,
		IssuedAt:  cl.IssuedAt.Time,
		ExpiresAt: cl.ExpiresAt.Time,
	}
	switch {
	case cl.Type == resetTypeClaim:
		out.Kind = domain.KindPasswordReset
	case cl.Type != "":
		return domain.TokenClaims{}, fmt.Errorf("unknown token type %q", cl.Type)
	case cl.Roles != "":
		role, ok := domain.ParseRole(cl.Roles)
		if !ok {
			return domain.TokenClaims{}, fmt.Errorf("unknown role %q", cl.Roles)
		}
		out.Kind = domain.KindAccess
		out.Role = role
	default:
		out.Kind = domain.KindRefresh
	}
	return out, nil
}
