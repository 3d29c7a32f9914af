package domain

// Ключи токенов в Redis — единое место, чтобы не расползались по коду.
// TTL: RT — дни, PRT — минуты, BL — ровно остаток жизни access-токена.
func KeyRefreshToken(sub MemberID) string { return "RT:" + sub.String() }
func KeyResetToken(sub MemberID) string   { return "PRT:" + sub.String() }
func KeyBlacklist(raw Token) string       { return "BL:" + string(raw) }
