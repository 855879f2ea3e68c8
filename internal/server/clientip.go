package server

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// IPResolver 解析客户端真实 IP。只有直连对端在可信代理网段内时才采信转发头，
// 优先级 CF-Connecting-IP > X-Real-IP > X-Forwarded-For 第一个地址。
type IPResolver struct {
	trusted []netip.Prefix
}

// NewIPResolver 解析可信代理列表，元素可以是 CIDR 或单个 IP。
func NewIPResolver(proxies []string) (*IPResolver, error) {
	r := &IPResolver{}
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.Contains(p, "/") {
			prefix, err := netip.ParsePrefix(p)
			if err != nil {
				return nil, fmt.Errorf("可信代理 %q 格式错误: %w", p, err)
			}
			r.trusted = append(r.trusted, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(p)
		if err != nil {
			return nil, fmt.Errorf("可信代理 %q 格式错误: %w", p, err)
		}
		addr = addr.Unmap()
		r.trusted = append(r.trusted, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return r, nil
}

// ClientIP 返回请求的客户端 IP。
func (r *IPResolver) ClientIP(req *http.Request) string {
	peer := remoteHost(req.RemoteAddr)
	if r == nil || !r.isTrusted(peer) {
		return peer
	}

	for _, h := range []string{"CF-Connecting-IP", "X-Real-IP"} {
		if ip := validIP(req.Header.Get(h)); ip != "" {
			return ip
		}
	}
	if xff := req.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := validIP(first); ip != "" {
			return ip
		}
	}
	return peer
}

func (r *IPResolver) isTrusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range r.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

func validIP(s string) string {
	s = strings.TrimSpace(s)
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return ""
	}
	return addr.Unmap().String()
}
