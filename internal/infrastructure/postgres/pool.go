package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/LandedCost-api/pkg/config"
)

const (
	defaultMaxConns = 25
	minConns        = 2
)

// NewPool crea el pool de conexiones del motor de costo en destino. Todas las conexiones registran
// el codec NUMERIC <-> shopspring/decimal: montos, tasas y participaciones nunca pasan por float.
// Con DB_FORCE_IPV4 el host se resuelve a IPv4 (opcionalmente contra DB_DNS_FALLBACK) y el dial
// usa tcp4.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	if cfg.ForceIPv4 {
		r := newIPv4Resolver(cfg.DNSFallback)
		poolConfig.ConnConfig.DialFunc = r.dial
	}

	poolConfig.MaxConns = defaultMaxConns
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	poolConfig.MinConns = minConns
	if poolConfig.MinConns > poolConfig.MaxConns {
		poolConfig.MinConns = poolConfig.MaxConns
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

var errNoIPv4 = errors.New("sin dirección IPv4")

// ipv4Resolver resuelve hosts a IPv4 con el resolver del sistema y, si falla, con un DNS alternativo.
type ipv4Resolver struct {
	resolvers []*net.Resolver
}

func newIPv4Resolver(fallback string) *ipv4Resolver {
	r := &ipv4Resolver{resolvers: []*net.Resolver{net.DefaultResolver}}
	if fallback != "" {
		r.resolvers = append(r.resolvers, &net.Resolver{
			PreferGo: true,
			Dial: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "udp", fallback)
			},
		})
	}
	return r
}

// lookup devuelve la primera IPv4 del host. Una IP literal se devuelve tal cual si es v4.
func (r *ipv4Resolver) lookup(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() != nil {
			return host, nil
		}
		return "", fmt.Errorf("%w: %s es IPv6", errNoIPv4, host)
	}
	lastErr := errNoIPv4
	for _, res := range r.resolvers {
		ips, err := res.LookupIP(ctx, "ip4", host)
		if err != nil {
			lastErr = err
			continue
		}
		for _, ip := range ips {
			if ip.To4() != nil {
				return ip.String(), nil
			}
		}
	}
	return "", fmt.Errorf("resolver %s: %w", host, lastErr)
}

// dial es el DialFunc de pgx: tcp4 contra la IPv4 resuelta, o el dial normal si no hay IPv4.
func (r *ipv4Resolver) dial(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ip, err := r.lookup(ctx, host)
	if err != nil {
		return d.DialContext(ctx, network, addr)
	}
	return d.DialContext(ctx, "tcp4", net.JoinHostPort(ip, port))
}
