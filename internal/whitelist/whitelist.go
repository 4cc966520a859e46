package whitelist

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"
)

// Checker decides whether mail from a sender domain skips tone analysis
type Checker struct {
	domains map[string]struct{}
	logger  *zap.Logger
}

// NewChecker creates a new whitelist checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make(map[string]struct{}, len(domains))
	names := make([]string, 0, len(domains))
	for _, domain := range domains {
		d := strings.Trim(strings.ToLower(strings.TrimSpace(domain)), ".")
		if d == "" {
			continue
		}
		if _, dup := normalized[d]; !dup {
			normalized[d] = struct{}{}
			names = append(names, d)
		}
	}

	if len(names) > 0 && logger != nil {
		logger.Info("Initialized whitelist checker", zap.Strings("domains", names))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// Domain extracts the lower-cased domain of an address such as
// "a@example.com" or "Alice <a@example.com>"
func Domain(from string) string {
	addr := strings.TrimSpace(from)
	if parsed, err := mail.ParseAddress(addr); err == nil {
		addr = parsed.Address
	}
	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return ""
	}
	return strings.ToLower(strings.Trim(addr[at+1:], "<> ."))
}

// IsWhitelisted checks if the sender's domain, or a parent of it, is in the whitelist
func (c *Checker) IsWhitelisted(from string) bool {
	if len(c.domains) == 0 {
		return false
	}

	domain := Domain(from)
	for d := domain; d != ""; {
		if _, ok := c.domains[d]; ok {
			if c.logger != nil {
				c.logger.Debug("Domain is whitelisted",
					zap.String("domain", domain),
					zap.String("email", from))
			}
			return true
		}
		dot := strings.IndexByte(d, '.')
		if dot < 0 {
			break
		}
		d = d[dot+1:]
	}

	return false
}
