package routeaccess

import (
	"reflect"
	"testing"

	"kasa-backend/internal/models"
)

func TestResolveRoutesPrecedence(t *testing.T) {
	tests := []struct {
		name         string
		override     []string
		roleRoutes   []string
		want         []string
		unrestricted bool
	}{
		{
			name:       "override wins over role config",
			override:   []string{"/pos", "/reports"},
			roleRoutes: []string{"/dashboard"},
			want:       []string{"/pos", "/reports"},
		},
		{
			name:       "role config when no override",
			roleRoutes: []string{"/pos"},
			want:       []string{"/pos"},
		},
		{
			name:         "unrestricted when neither set",
			unrestricted: true,
		},
		{
			name:       "empty override falls back to role config",
			override:   []string{},
			roleRoutes: []string{"/floor-plan"},
			want:       []string{"/floor-plan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, unrestricted := ResolveRoutes(tt.override, tt.roleRoutes)
			if unrestricted != tt.unrestricted {
				t.Fatalf("unrestricted = %v, want %v", unrestricted, tt.unrestricted)
			}
			if !tt.unrestricted && !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("routes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultLandingRoute(t *testing.T) {
	tests := []struct {
		name         string
		role         models.UserRole
		routes       []string
		unrestricted bool
		want         string
	}{
		{
			// Kasiyer, rol listesi ["/caisse"] -> ilk sayfa
			name:   "restricted cashier lands on first route",
			role:   models.RoleCashier,
			routes: []string{"/caisse"},
			want:   "/caisse",
		},
		{
			name:         "unrestricted admin lands on dashboard",
			role:         models.RoleAdmin,
			unrestricted: true,
			want:         "/dashboard",
		},
		{
			name:         "unrestricted cashier lands on pos",
			role:         models.RoleCashier,
			unrestricted: true,
			want:         "/pos",
		},
		{
			name:         "unrestricted server lands on floor plan",
			role:         models.RoleServer,
			unrestricted: true,
			want:         "/floor-plan",
		},
		{
			name:         "unknown role falls back",
			role:         "ghost",
			unrestricted: true,
			want:         fallbackRoute,
		},
		{
			// Kısıtlı ama listesi boş kalmış: yine sabit tabloya düşer
			name: "restricted with empty list degrades to role default",
			role: models.RoleCashier,
			want: "/pos",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultLandingRoute(tt.role, tt.routes, tt.unrestricted)
			if got != tt.want {
				t.Fatalf("DefaultLandingRoute = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRoutes(t *testing.T) {
	valid := `["/pos","/reports"]`
	if got := parseRoutes(&valid); !reflect.DeepEqual(got, []string{"/pos", "/reports"}) {
		t.Fatalf("parseRoutes(valid) = %v", got)
	}

	broken := `{not json`
	if got := parseRoutes(&broken); got != nil {
		t.Fatalf("broken JSON must resolve to nil, got %v", got)
	}

	if got := parseRoutes(nil); got != nil {
		t.Fatalf("nil input must resolve to nil, got %v", got)
	}

	withEmpty := `["/pos",""]`
	if got := parseRoutes(&withEmpty); !reflect.DeepEqual(got, []string{"/pos"}) {
		t.Fatalf("empty entries must be dropped, got %v", got)
	}
}

func TestAllowedRoutesForOverrideWithoutDB(t *testing.T) {
	// Override doluyken veritabanına hiç gidilmez
	override := `["/pos"]`
	user := &models.User{Role: models.RoleCashier, AllowedRoutes: &override}

	routes, unrestricted := AllowedRoutesFor(user)
	if unrestricted || !reflect.DeepEqual(routes, []string{"/pos"}) {
		t.Fatalf("got routes=%v unrestricted=%v", routes, unrestricted)
	}
}

func TestLandingRouteForNeverPanics(t *testing.T) {
	// DB yok, override bozuk: yine de bir sayfa dönmeli
	broken := `{{`
	user := &models.User{Role: "ghost", AllowedRoutes: &broken}
	if got := LandingRouteFor(user); got != fallbackRoute {
		t.Fatalf("LandingRouteFor = %q, want %q", got, fallbackRoute)
	}
}
