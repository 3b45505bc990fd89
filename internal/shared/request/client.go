package request

import "strings"

type ClientType string

const (
	ClientWeb    ClientType = "web"
	ClientMobile ClientType = "mobile"
	ClientAPI    ClientType = "api"
)

// ResolveClientType prefers an explicit X-Client-Type header and falls back to
// sniffing the user agent. Browsers get cookies; everything else gets tokens in
// the body only.
func ResolveClientType(header, userAgent string) ClientType {
	switch ClientType(strings.ToLower(strings.TrimSpace(header))) {
	case ClientWeb:
		return ClientWeb
	case ClientMobile:
		return ClientMobile
	case ClientAPI:
		return ClientAPI
	}

	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "okhttp"), strings.Contains(ua, "cfnetwork"), strings.Contains(ua, "dart"):
		return ClientMobile
	case strings.Contains(ua, "mozilla"):
		return ClientWeb
	default:
		return ClientAPI
	}
}

func IsWebClient(t ClientType) bool {
	return t == ClientWeb
}
