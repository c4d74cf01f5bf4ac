package domains

import (
	"strings"

	"go.uber.org/zap"
)

// Checker decides whether a correspondent belongs to one of the
// organization's own mail domains
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new internal-domain checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, 0, len(domains))
	for _, domain := range domains {
		d := strings.ToLower(strings.TrimSpace(domain))
		d = strings.TrimPrefix(d, "@")
		if d != "" {
			normalized = append(normalized, d)
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized internal domain checker", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// Domains returns the configured internal domains
func (c *Checker) Domains() []string {
	return c.domains
}

// IsInternal checks if the address's domain is one of the internal domains.
// Display names ("Name <addr>") are accepted.
func (c *Checker) IsInternal(address string) bool {
	if len(c.domains) == 0 {
		return false
	}

	domain := domainOf(address)
	if domain == "" {
		return false
	}

	for _, internal := range c.domains {
		if internal == domain {
			if c.logger != nil {
				c.logger.Debug("Domain is internal",
					zap.String("domain", domain),
					zap.String("email", address))
			}
			return true
		}
	}

	return false
}

func domainOf(address string) string {
	addr := strings.TrimSpace(address)
	if open := strings.Index(addr, "<"); open >= 0 {
		if end := strings.Index(addr[open:], ">"); end >= 0 {
			addr = addr[open+1 : open+end]
		}
	}

	parts := strings.Split(addr, "@")
	if len(parts) != 2 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(parts[1]))
}
