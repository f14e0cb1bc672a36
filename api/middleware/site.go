package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/vendorhub-backend/api/responses"
	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
	"github.com/angelmondragon/vendorhub-backend/pkg/logger"
)

const siteHeader = "X-Site"

// SiteResolver maps a site domain to its tenant row.
type SiteResolver interface {
	ResolveSite(ctx context.Context, domain string) (*models.Site, error)
}

// Site resolves the request's tenant from the X-Site header, falling back to
// the configured default domain, and seeds the context with the site id.
func Site(resolver SiteResolver, defaultDomain string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			domain := strings.TrimSpace(r.Header.Get(siteHeader))
			if domain == "" {
				domain = defaultDomain
			}

			site, err := resolver.ResolveSite(r.Context(), domain)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithSiteID(r.Context(), site.ID.String())
			if logg != nil {
				ctx = logg.WithSiteID(ctx, site.ID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
