// Package application contém os casos de uso do rate limit (janela fixa por chave)
// e do limite de concorrência.
//
// Depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Decide(ctx, key) conta a requisição e retorna uma Decision
// (allow/deny, restante, retry-after).
package application
