// Package dns answers whether an email domain can receive mail.
package dns

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/registra/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	cachePrefix = "registration:dns:"

	cacheResolvable   = "1"
	cacheUnresolvable = "0"
)

// Resolver is the subset of *net.Resolver used by Checker.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupHost(ctx context.Context, host string) ([]string, error)
}

type Checker struct {
	resolver Resolver
	cache    redis.UniversalClient
	cacheTTL time.Duration
	timeout  time.Duration
	ins      instrument.Instrumentation
}

type Config struct {
	Resolver Resolver
	// Cache is optional; definite answers are stored for CacheTTL.
	Cache    redis.UniversalClient
	CacheTTL time.Duration
	Timeout  time.Duration
	Ins      instrument.Instrumentation
}

func NewChecker(cfg Config) *Checker {
	if cfg.Resolver == nil {
		cfg.Resolver = net.DefaultResolver
	}
	if cfg.Ins == nil {
		cfg.Ins = instrument.NewNoop()
	}

	return &Checker{
		resolver: cfg.Resolver,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
		timeout:  cfg.Timeout,
		ins:      cfg.Ins,
	}
}

// Resolvable reports whether domain has an MX record, or failing that an
// address record. A domain the resolver says does not exist yields false; any
// other resolver failure is returned.
func (c *Checker) Resolvable(ctx context.Context, domain string) (ok bool, err error) {
	ctx, span := c.ins.Tracer("registration.outbound.dns").Start(ctx, "Resolvable")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	domain = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
	if domain == "" {
		return false, nil
	}
	span.SetAttributes(attribute.String("dns.domain", domain))

	if cached, hit := c.cached(ctx, domain); hit {
		span.SetAttributes(attribute.Bool("dns.cache_hit", true))
		return cached, nil
	}

	ok, err = c.resolve(ctx, domain)
	if err != nil {
		return false, err
	}

	c.store(ctx, domain, ok)
	return ok, nil
}

func (c *Checker) resolve(ctx context.Context, domain string) (bool, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	mxs, err := c.resolver.LookupMX(ctx, domain)
	switch {
	case err == nil && len(mxs) == 1 && mxs[0].Host == ".":
		// null MX: the domain explicitly accepts no mail
		return false, nil
	case err == nil && len(mxs) > 0:
		return true, nil
	case err != nil && !isNotFound(err):
		return false, err
	}

	hosts, err := c.resolver.LookupHost(ctx, domain)
	switch {
	case err == nil:
		return len(hosts) > 0, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

func isNotFound(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.IsNotFound
}

func (c *Checker) cached(ctx context.Context, domain string) (bool, bool) {
	if c.cache == nil {
		return false, false
	}

	val, err := c.cache.Get(ctx, cachePrefix+domain).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "failed to read dns cache", "domain", domain, "error", err)
		}
		return false, false
	}

	return val == cacheResolvable, true
}

func (c *Checker) store(ctx context.Context, domain string, ok bool) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}

	val := cacheUnresolvable
	if ok {
		val = cacheResolvable
	}

	if err := c.cache.Set(ctx, cachePrefix+domain, val, c.cacheTTL).Err(); err != nil {
		slog.WarnContext(ctx, "failed to write dns cache", "domain", domain, "error", err)
	}
}
