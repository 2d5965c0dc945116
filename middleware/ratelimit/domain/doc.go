// Package domain define contratos e tipos do rate limit por janela fixa
// e do limite de concorrência.
//
// Este pacote não depende de net/http nem de implementações concretas, o que
// permite testar a regra com relógio falso e contadores em memória.
package domain
