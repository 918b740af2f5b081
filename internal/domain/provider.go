package domain

import (
	"fmt"
	"strings"
)

// Provider identifies an outreach platform we sync from.
type Provider string

const (
	ProviderSmartlead Provider = "smartlead"
	ProviderReplyIO   Provider = "replyio"
)

// AllProviders lists every supported provider in a stable order.
var AllProviders = []Provider{ProviderSmartlead, ProviderReplyIO}

// ParseProvider normalizes a user-supplied platform name. It accepts a few
// legacy aliases that older callers still send.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "smartlead":
		return ProviderSmartlead, nil
	case "replyio", "reply.io", "reply_io", "reply":
		return ProviderReplyIO, nil
	default:
		return "", fmt.Errorf("unknown provider %q", s)
	}
}

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	return p == ProviderSmartlead || p == ProviderReplyIO
}

func (p Provider) String() string { return string(p) }
