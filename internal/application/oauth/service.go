// Package oauth exposes the mobile OAuth client configuration and creates it
// on first use.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"strings"
	"time"

	"github.com/crm-mobile-api/internal/config"
	"github.com/crm-mobile-api/internal/domain"
	"github.com/crm-mobile-api/internal/metrics"
	"github.com/crm-mobile-api/internal/pkg/sl"
	pkgtoken "github.com/crm-mobile-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

const clientIDAttempts = 3

type Service interface {
	ValidateHost(ctx context.Context, forwardedHost, host string) error
	GetConfig(ctx context.Context, forwardedHost, host string) (*domain.OAuthConfig, error)
	EnsureSettings(ctx context.Context) (*domain.OAuthSettings, error)
	Bootstrap(ctx context.Context) (*domain.BootstrapResult, error)
}

type oauthStore interface {
	GetSettings(ctx context.Context) (*domain.OAuthSettings, error)
	PutSettings(ctx context.Context, s *domain.OAuthSettings) error
	PutClient(ctx context.Context, c *domain.OAuthClient) error
}

type service struct {
	repo    oauthStore
	site    config.Site
	metrics *metrics.Metrics
	now     func() time.Time
}

type ServiceDeps struct {
	OAuthRepo oauthStore
	Site      config.Site
	Metrics   *metrics.Metrics
	Now       func() time.Time // defaults to time.Now
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: deps.OAuthRepo, site: deps.Site, metrics: deps.Metrics, now: now}
}

// ValidateHost accepts only hosts explicitly configured for the site. The
// first X-Forwarded-Host entry wins over Host; comparison ignores case and port.
func (s *service) ValidateHost(ctx context.Context, forwardedHost, host string) error {
	h := normalizeHost(forwardedHost, host)
	switch {
	case h == "":
		return s.reject(ctx, h, "host header is missing")
	case s.site.Name == "":
		return s.reject(ctx, h, "site information is not available")
	}
	allowed := s.allowedHosts()
	if len(allowed) == 0 {
		return s.reject(ctx, h, fmt.Sprintf("no domains are configured for site %s", s.site.Name))
	}
	if !slices.Contains(allowed, h) {
		return s.reject(ctx, h, fmt.Sprintf("domain %s is not configured for site %s", h, s.site.Name))
	}
	return nil
}

func (s *service) reject(ctx context.Context, host, reason string) error {
	slog.WarnContext(ctx, "oauth config rejected",
		slog.String("host", host), slog.String("site", s.site.Name), slog.String("reason", reason))
	if s.metrics != nil {
		s.metrics.HostRejections.Inc()
	}
	return fmt.Errorf("access denied: %s: %w", reason, domain.ErrForbidden)
}

func (s *service) allowedHosts() []string {
	var out []string
	for _, d := range s.site.Domains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			out = append(out, d)
		}
	}
	if hn := strings.ToLower(strings.TrimSpace(s.site.HostName)); hn != "" && !slices.Contains(out, hn) {
		out = append(out, hn)
	}
	return out
}

func normalizeHost(forwardedHost, host string) string {
	h := host
	if forwardedHost != "" {
		h, _, _ = strings.Cut(forwardedHost, ",")
	}
	h = strings.ToLower(strings.TrimSpace(h))
	if hostOnly, _, err := net.SplitHostPort(h); err == nil {
		return hostOnly
	}
	hostOnly, _, _ := strings.Cut(h, ":")
	return hostOnly
}

func (s *service) GetConfig(ctx context.Context, forwardedHost, host string) (*domain.OAuthConfig, error) {
	if err := s.ValidateHost(ctx, forwardedHost, host); err != nil {
		return nil, err
	}
	settings, err := s.EnsureSettings(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to ensure oauth settings", sl.Err(err))
		return nil, fmt.Errorf("failed to retrieve OAuth configuration: %w", err)
	}
	if settings.ClientID == "" {
		return nil, errors.New("OAuth configuration is incomplete")
	}
	cfg := &domain.OAuthConfig{
		ClientID:    settings.ClientID,
		Scope:       settings.Scope,
		RedirectURI: settings.RedirectURI,
	}
	if cfg.Scope == "" {
		cfg.Scope = domain.OAuthDefaultScope
	}
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = domain.OAuthDefaultRedirectURI
	}
	return cfg, nil
}

// EnsureSettings returns the stored settings, registering a new OAuth client
// first when none has been recorded yet. Calling it repeatedly is safe.
func (s *service) EnsureSettings(ctx context.Context) (*domain.OAuthSettings, error) {
	if s.site.Name == "" {
		return nil, errors.New("site name is not configured")
	}
	settings, err := s.repo.GetSettings(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		settings = &domain.OAuthSettings{}
	case err != nil:
		return nil, err
	case settings.ClientID != "":
		return settings, nil
	}

	secret, err := pkgtoken.NewClientSecret()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash client secret: %w", err)
	}
	client := &domain.OAuthClient{
		ClientSecretHash:   string(hash),
		AppName:            domain.OAuthAppName,
		ClientName:         fmt.Sprintf("%s - %s", domain.OAuthAppName, s.site.Name),
		RedirectURIs:       domain.OAuthDefaultRedirectURI,
		DefaultRedirectURI: domain.OAuthDefaultRedirectURI,
		Scopes:             domain.OAuthDefaultScope,
		GrantType:          domain.OAuthGrantAuthorization,
		ResponseType:       domain.OAuthResponseTypeCode,
		SkipAuthorization:  true,
		CreatedAt:          s.now().UTC(),
	}
	if err := s.registerClient(ctx, client); err != nil {
		return nil, err
	}

	settings.ClientID = client.ClientID
	settings.ClientSecret = secret
	settings.Scope = client.Scopes
	settings.RedirectURI = client.DefaultRedirectURI
	if err := s.repo.PutSettings(ctx, settings); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "oauth client created", slog.String("site", s.site.Name), slog.String("client_id", client.ClientID))
	return settings, nil
}

// registerClient retries with a fresh id when the generated one is taken.
func (s *service) registerClient(ctx context.Context, c *domain.OAuthClient) error {
	var err error
	for range clientIDAttempts {
		if c.ClientID, err = pkgtoken.NewClientID(); err != nil {
			return err
		}
		err = s.repo.PutClient(ctx, c)
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
	}
	return err
}

func (s *service) Bootstrap(ctx context.Context) (*domain.BootstrapResult, error) {
	res := &domain.BootstrapResult{Site: s.site.Name}
	settings, err := s.EnsureSettings(ctx)
	if err != nil {
		res.Message = err.Error()
		return res, err
	}
	res.OK = true
	res.ClientID = settings.ClientID
	res.Message = "OAuth client is configured"
	return res, nil
}
