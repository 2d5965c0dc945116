// formatação de inteiros para headers (Retry-After, X-RateLimit-*).

package ratelimit

import "strconv"

func formatInt(v int) string { return strconv.Itoa(v) }
