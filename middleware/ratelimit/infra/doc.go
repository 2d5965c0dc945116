// Package infra contém implementações concretas dos contratos do pacote domain.
//
//   - MemoryCounter: janela fixa por chave em memória, com janitor opcional
//   - RedisCounter: a mesma janela fixa em Redis (script Lua INCR+PEXPIRE)
//   - ChanPool: semáforo para o limite de concorrência
//   - Memory/Redis/PrometheusStatsStore: estatísticas das decisões
package infra
