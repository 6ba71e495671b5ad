package proxy

import (
	"net/http"
	"net/textproto"
	"strings"
)

// hopByHop headers are connection-scoped and must not be forwarded
// (RFC 9110 §7.6.1).
var hopByHop = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Proxy-Connection":    true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

// copyHeaders copies src into dst, dropping hop-by-hop headers and any
// header the Connection header nominates.
func copyHeaders(dst, src http.Header) {
	nominated := map[string]bool{}
	for _, v := range src.Values("Connection") {
		for _, name := range strings.Split(v, ",") {
			name = textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(name))
			if name != "" {
				nominated[name] = true
			}
		}
	}
	for key, values := range src {
		if hopByHop[key] || nominated[key] {
			continue
		}
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}
