// Package cors decide quais origens recebem Access-Control-Allow-Origin.
//
// A lista de origens é estática: as origens de produção configuradas e, fora
// de produção, as origens locais de desenvolvimento.
package cors

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DevOrigins são liberadas apenas fora de produção.
var DevOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
}

type Config struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
	MaxAge       time.Duration
}

// Origins monta a allow-list: as origens configuradas e, se production=false,
// também DevOrigins. Entradas vazias e duplicadas são descartadas.
func Origins(production bool, configured []string) []string {
	all := configured
	if !production {
		all = append(append([]string{}, configured...), DevOrigins...)
	}

	seen := make(map[string]struct{}, len(all))
	out := make([]string, 0, len(all))
	for _, o := range all {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}

func DefaultConfig(origins []string) Config {
	return Config{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       24 * time.Hour,
	}
}

// Middleware aplica a política em toda requisição:
//
//   - Allow-Methods, Allow-Headers e Max-Age vão sempre, com ou sem match de origem
//   - Allow-Origin só é enviado quando a origem bate exatamente com a lista
//   - OPTIONS responde 200 sem corpo e não chega ao handler
func Middleware(cfg Config) func(next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		allowed[o] = struct{}{}
	}
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			if origin := r.Header.Get("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h.Set("Access-Control-Allow-Origin", origin)
				}
			}
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			h.Set("Access-Control-Max-Age", maxAge)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
