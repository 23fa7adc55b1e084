package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// originPolicy is the normalized WebSocket origin allow-list.
type originPolicy struct {
	log      *slog.Logger
	allowed  map[string]struct{}
	allowAll bool
}

func newOriginPolicy(log *slog.Logger, origins []string) *originPolicy {
	p := &originPolicy{log: log, allowed: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		if trimmed == "*" {
			p.allowAll = true
			continue
		}
		normalized, ok := normalizeOrigin(trimmed)
		if !ok {
			log.Warn("Ignoring invalid origin in configuration", "origin", origin)
			continue
		}
		p.allowed[normalized] = struct{}{}
	}
	return p
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil {
		return "", false
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

func (p *originPolicy) isAllowed(r *http.Request) bool {
	header := r.Header.Get("Origin")
	if header == "" {
		return false
	}
	normalized, ok := normalizeOrigin(header)
	if !ok {
		return false
	}
	if p.allowAll {
		return true
	}
	_, exists := p.allowed[normalized]
	return exists
}

// check is used as the upgrader's CheckOrigin.
func (p *originPolicy) check(r *http.Request) bool {
	if p.isAllowed(r) {
		return true
	}
	p.log.Warn("Blocked WebSocket connection from disallowed origin", "origin", r.Header.Get("Origin"))
	return false
}
