// Package ratelimit fornece adapters HTTP (net/http) para rate limit por janela
// fixa e limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos (Rule, Window, Counter, Decision), sem net/http
//   - application: casos de uso (decisão allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (contador em memória/Redis, semáforo, estatísticas)
//   - ratelimit (este pacote): middlewares HTTP + extração do IP + tradução para status/headers
//
// Fluxo por rota:
//
//  1. Extrai a chave do cliente (X-Forwarded-For, X-Real-IP ou "unknown")
//  2. Prefixa com o namespace da regra e pede a decisão à camada application
//  3. Se bloqueado, responde 429 com JSON {"error": ...} e Retry-After
//  4. Se permitido, chama o próximo handler
//
// O limite de cada endpoint é configurado em cmd/intake por variáveis de ambiente
// como FEEDBACK_RATE_LIMIT, COUNT_RATE_LIMIT e RATE_LIMIT_WINDOW.
package ratelimit
