// Package sanitize limpa e valida campos de texto vindos de formulários.
//
// Todas as funções são puras e nunca entram em pânico com entrada arbitrária.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	scriptBlockPattern  = regexp.MustCompile(`(?is)<(script|style)\b[^>]*>.*?</(script|style)\s*>`)
	tagPattern          = regexp.MustCompile(`<[^>]*>`)
	jsSchemePattern     = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerPattern = regexp.MustCompile(`(?i)on\w+\s*=`)

	emailLocalPattern  = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+$")
	emailDomainPattern = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*\.[a-zA-Z]{2,}$`)
	looseEmailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const (
	maxEmailLength  = 254
	maxLocalLength  = 64
	maxDomainLength = 253
)

// Text transforma um valor não confiável numa string limitada e sem marcação.
// Valores que não são string viram "".
//
// Ordem: trim, corte em maxLength caracteres, remoção de blocos script/style,
// de tags <...>, de "javascript:" e de atributos on<evento>=.
// O corte vem antes da remoção, então uma tag partida no limite pode sobrar
// pela metade (ex.: "<b" sem o ">"). Remoção só encurta, então o limite vale
// também para o resultado, que sai sem espaços nas pontas.
func Text(input any, maxLength int) string {
	s, ok := input.(string)
	if !ok {
		return ""
	}

	s = truncate(strings.TrimSpace(s), maxLength)
	return strings.TrimSpace(strip(s))
}

// strip repete as remoções até a string parar de mudar: tirar um trecho pode
// juntar as pontas num novo "javascript:" ou "onclick=".
func strip(s string) string {
	for {
		out := scriptBlockPattern.ReplaceAllString(s, "")
		out = tagPattern.ReplaceAllString(out, "")
		out = jsSchemePattern.ReplaceAllString(out, "")
		out = eventHandlerPattern.ReplaceAllString(out, "")
		if out == s {
			return out
		}
		s = out
	}
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for idx := range s {
		if i == n {
			return s[:idx]
		}
		i++
	}
	return s
}

// IsValidEmailShape faz a validação estrutural do e-mail (tamanhos, caracteres
// da parte local, hostname com TLD alfabético de 2+ letras). Não verifica se
// o endereço recebe mensagens.
func IsValidEmailShape(email string) bool {
	if len(email) > maxEmailLength {
		return false
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	local, domain := parts[0], parts[1]
	if local == "" || domain == "" {
		return false
	}
	if len(local) > maxLocalLength || len(domain) > maxDomainLength {
		return false
	}

	return emailDomainPattern.MatchString(domain) && emailLocalPattern.MatchString(local)
}

// LooksLikeEmail é a checagem frouxa usada pela lista de espera:
// algo@algo.algo, sem espaços e com um único @ em cada lado.
func LooksLikeEmail(email string) bool {
	return looseEmailPattern.MatchString(email)
}

// NormalizeEmail é a chave de unicidade da lista de espera.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
