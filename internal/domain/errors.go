package domain

import "errors"

// Бизнес-ошибки (маппятся на HTTP коды в transport/web/v1)
var (
	ErrBadParams        = errors.New("bad_params")         // 400
	ErrUnauth           = errors.New("unauthorized")       // 401
	ErrForbidden        = errors.New("forbidden")          // 403
	ErrNotFound         = errors.New("not_found")          // 404
	ErrMethodNotAllowed = errors.New("method_not_allowed") // 405
	ErrConflict         = errors.New("conflict")           // 409 (дубликат email/username/slug)
	ErrUnexpected       = errors.New("unexpected")         // 500
)

// Ошибки подсистемы токенов. Причины отказа наружу не различаем:
// подпись/формат/exp/блэклист/несовпадение с хранилищем — всё ErrTokenInvalid.
var (
	ErrTokenInvalid          = errors.New("token_invalid")           // -> 401
	ErrTokenStoreUnavailable = errors.New("token_store_unavailable") // -> 500
)
