package routeaccess

import (
	"encoding/json"

	"kasa-backend/internal/database"
	"kasa-backend/internal/models"
)

// Rol için statik açılış sayfası tablosu. Kısıtlı listesi olan kullanıcıda
// listenin ilk sayfası kazanır; bu tablo sadece kısıtsız hesaplar içindir.
var defaultLandingByRole = map[models.UserRole]string{
	models.RoleSuperAdmin: "/dashboard",
	models.RoleAdmin:      "/dashboard",
	models.RoleManager:    "/dashboard",
	models.RoleCashier:    "/pos",
	models.RoleServer:     "/floor-plan",
}

// Rol tanınmazsa bile giriş bir yere inmeli
const fallbackRoute = "/pos"

// ResolveRoutes üç katmanı sıraya koyar: kullanıcı listesi doluysa aynen o,
// yoksa rol listesi, o da yoksa kısıtsız.
func ResolveRoutes(override, roleRoutes []string) ([]string, bool) {
	if len(override) > 0 {
		return override, false
	}
	if len(roleRoutes) > 0 {
		return roleRoutes, false
	}
	return nil, true
}

// DefaultLandingRoute asla hata dönmez; bozuk yönlendirme girişi bloklamasın
// diye her durumda sabit bir sayfaya düşer.
func DefaultLandingRoute(role models.UserRole, routes []string, unrestricted bool) string {
	if !unrestricted && len(routes) > 0 {
		return routes[0]
	}
	if r, ok := defaultLandingByRole[role]; ok {
		return r
	}
	return fallbackRoute
}

// parseRoutes JSON diziyi çözer; bozuk veri nil sayılır, hata yükseltilmez.
func parseRoutes(raw *string) []string {
	if raw == nil || *raw == "" {
		return nil
	}
	var routes []string
	if err := json.Unmarshal([]byte(*raw), &routes); err != nil {
		return nil
	}
	out := routes[:0]
	for _, r := range routes {
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}

// AllowedRoutesFor kullanıcının erişebileceği sayfaları hesaplar.
// İkinci dönüş true ise hesap kısıtsızdır.
func AllowedRoutesFor(user *models.User) ([]string, bool) {
	override := parseRoutes(user.AllowedRoutes)

	var roleRoutes []string
	if len(override) == 0 && database.DB != nil {
		var ra models.RouteAccess
		if err := database.DB.First(&ra, "role = ?", user.Role).Error; err == nil {
			roleRoutes = parseRoutes(&ra.Routes)
		}
	}

	return ResolveRoutes(override, roleRoutes)
}

// LandingRouteFor girişten sonra yönlendirilecek sayfa.
func LandingRouteFor(user *models.User) string {
	routes, unrestricted := AllowedRoutesFor(user)
	return DefaultLandingRoute(user.Role, routes, unrestricted)
}
