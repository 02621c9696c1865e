package requestcontext

import (
	"context"
	"net"

	"github.com/gofiber/fiber/v2"
)

type clientIPKey struct{}

type WithClientIPConfig struct {
	// TrustedHeader is an optional header name for getting client IP.
	// (e.g. X-Real-IP, CF-Connecting-IP, etc.)
	TrustedHeader string `env:"TRUSTED_HEADER" mapstructure:"trusted_proxies_header"`
}

// WithClientIP setup client IP context.
//
// If request is from proxies, it will use first IP from `X-Forwarded-For` header by default.
func WithClientIP(config WithClientIPConfig) Option {
	return func(ctx context.Context, c *fiber.Ctx) (context.Context, error) {
		if config.TrustedHeader != "" {
			headerIP := c.Get(config.TrustedHeader)
			if ip := net.ParseIP(headerIP); ip != nil {
				return context.WithValue(ctx, clientIPKey{}, headerIP), nil
			}
		}

		if ips := c.IPs(); len(ips) > 0 {
			return context.WithValue(ctx, clientIPKey{}, ips[0]), nil
		}

		return context.WithValue(ctx, clientIPKey{}, c.IP()), nil
	}
}

// GetClientIP get clientIP from context. If not found, return empty string
//
// Warning: Request context should be setup before using this function
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}
