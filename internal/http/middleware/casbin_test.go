package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnforcer(t *testing.T) *casbin.Enforcer {
	t.Helper()

	modelText := `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && regexMatch(r.act, p.act)
`
	m, err := model.NewModelFromString(modelText)
	require.NoError(t, err)
	e, err := casbin.NewEnforcer(m)
	require.NoError(t, err)
	return e
}

func TestCasbinMW_Enforce(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		setupEnforcer  func(t *testing.T) *casbin.Enforcer
		role           string
		request        *http.Request
		expectedStatus int
	}{
		{
			name: "admin allowed on admin routes",
			setupEnforcer: func(t *testing.T) *casbin.Enforcer {
				e := newTestEnforcer(t)
				_, err := e.AddPolicy("role_admin", "/admin/*", "(GET|POST|PUT|DELETE)")
				require.NoError(t, err)
				return e
			},
			role:           "admin",
			request:        httptest.NewRequest("GET", "/admin/accounts/pending", nil),
			expectedStatus: http.StatusOK,
		},
		{
			name: "customer denied on admin routes",
			setupEnforcer: func(t *testing.T) *casbin.Enforcer {
				e := newTestEnforcer(t)
				_, err := e.AddPolicy("role_admin", "/admin/*", "(GET|POST|PUT|DELETE)")
				require.NoError(t, err)
				return e
			},
			role:           "customer",
			request:        httptest.NewRequest("POST", "/admin/accounts/3/approve", nil),
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "no policies denies everyone",
			setupEnforcer: func(t *testing.T) *casbin.Enforcer {
				return newTestEnforcer(t)
			},
			role:           "admin",
			request:        httptest.NewRequest("GET", "/admin/policies", nil),
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "missing role in context",
			setupEnforcer: func(t *testing.T) *casbin.Enforcer {
				return newTestEnforcer(t)
			},
			role:           "",
			request:        httptest.NewRequest("GET", "/admin/policies", nil),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewCasbinMW(tt.setupEnforcer(t))

			r := gin.New()
			r.Use(func(c *gin.Context) {
				if tt.role != "" {
					c.Set("account_role", tt.role)
				}
			})
			r.Use(mw.Enforce())
			r.Any("/admin/*path", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, tt.request)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
		})
	}
}
