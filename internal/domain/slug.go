package domain

import (
	"math/rand"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const maxSlugLen = 100

// Slugify нормализует заголовок в slug: NFD-декомпозиция с отбрасыванием
// диакритики, допускаются буквы/цифры/хангыль, пробелы схлопываются в дефис,
// итог пересобирается в NFC (хангыль возвращается в слоги). Пустой результат
// заменяется на "post".
func Slugify(title string) string {
	n := norm.NFD.String(title)

	var b strings.Builder
	prevHyphen := false
	for _, r := range n {
		switch {
		case unicode.Is(unicode.Mn, r): // комбинирующие знаки — отбрасываем
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			prevHyphen = false
		case unicode.IsSpace(r) || r == '-':
			if !prevHyphen && b.Len() > 0 {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}

	s := strings.Trim(norm.NFC.String(b.String()), "-")
	if s == "" {
		return "post"
	}
	if len(s) > maxSlugLen {
		// обрезаем по границе руны, иначе срез порвёт многобайтовый символ
		cut := maxSlugLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = strings.Trim(s[:cut], "-")
	}
	return s
}

// SlugToken — короткий base36-суффикс для разруливания коллизий slug'ов
func SlugToken() string {
	s := strconv.FormatInt(rand.Int63(), 36)
	if len(s) > 6 {
		s = s[len(s)-6:]
	}
	return s
}
