package model

import (
	"regexp"
	"strings"

	"household-billing/internal/domain"
)

const countryCode = "237"

// Local mobile numbers are nine digits starting with a carrier prefix (65-69).
var localMobileRe = regexp.MustCompile(`^6[5-9][0-9]{7}$`)

// NormalizePhone strips an optional leading "+", the country code and a trunk
// zero, then validates the remaining local mobile pattern.
func NormalizePhone(raw string) (string, error) {
	p := strings.TrimSpace(raw)
	p = strings.TrimPrefix(p, "+")
	p = strings.TrimPrefix(p, countryCode)
	p = strings.TrimPrefix(p, "0")
	if !localMobileRe.MatchString(p) {
		return "", domain.ErrInvalidPhone
	}
	return p, nil
}

// ChannelForMethod maps a user-facing payment-method label to a channel.
// Any label mentioning Orange selects Orange Money; everything else falls
// through to MTN MoMo. This substring rule matches the upstream behavior.
func ChannelForMethod(method string) PaymentChannel {
	if strings.Contains(strings.ToUpper(method), "ORANGE") {
		return ChannelOrangeMoney
	}
	return ChannelMTNMomo
}
