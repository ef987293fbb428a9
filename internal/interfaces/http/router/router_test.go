package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func reply(body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, body)
	}
}

func TestNewRouter_Defaults(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("documents", "/documents").
		GET("", reply("list")).
		POST("", reply("create")).
		PUT("/:id/lines", reply("lines")).
		DELETE("/:id", reply("delete"))
	assert.Equal(t, "documents", g.Name())
	assert.Equal(t, "/documents", g.Prefix())

	NewRouter(engine).Register(g).Setup()

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/v1/documents", "list"},
		{http.MethodPost, "/api/v1/documents", "create"},
		{http.MethodPut, "/api/v1/documents/42/lines", "lines"},
		{http.MethodDelete, "/api/v1/documents/42", "delete"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/documents").Code,
		"routes live only under the versioned prefix")
}

func TestDomainGroup_Subgroups(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("documents", "/documents")
	g.Group("payments", "/:id/payments").GET("", func(c *gin.Context) {
		c.String(http.StatusOK, "payments of "+c.Param("id"))
	})
	g.Group("balance", "/:id/balance").GET("", func(c *gin.Context) {
		c.String(http.StatusOK, "balance of "+c.Param("id"))
	})
	NewRouter(engine).Register(g).Setup()

	assert.Equal(t, "payments of 7", serve(engine, http.MethodGet, "/api/v1/documents/7/payments").Body.String())
	assert.Equal(t, "balance of 7", serve(engine, http.MethodGet, "/api/v1/documents/7/balance").Body.String())
}

func TestMiddlewareScope(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", reply("ok"))

	guarded := NewDomainGroup("payments", "/payments").
		Use(func(c *gin.Context) {
			c.AbortWithStatus(http.StatusForbidden)
		}).
		POST("/:id/reverse", reply("reversed"))
	open := NewDomainGroup("parties", "/parties").GET("", reply("parties"))

	NewRouter(engine).
		Use(func(c *gin.Context) {
			c.Header("X-Api-Version", "v1")
			c.Next()
		}).
		Register(guarded).
		Register(open).
		Setup()

	w := serve(engine, http.MethodGet, "/api/v1/parties")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "v1", w.Header().Get("X-Api-Version"))

	w = serve(engine, http.MethodPost, "/api/v1/payments/9/reverse")
	assert.Equal(t, http.StatusForbidden, w.Code, "group middleware runs before the handler")
	assert.Equal(t, "v1", w.Header().Get("X-Api-Version"))

	w = serve(engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Api-Version"), "router middleware stays under the API prefix")
}
