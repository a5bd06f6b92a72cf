package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"crm-service/internal/adapter/db/postgres"
	"crm-service/internal/adapter/gin/handler"
	companydomain "crm-service/internal/domain/company"
	"crm-service/internal/domain/user"
	"crm-service/internal/usecase/auth"
	"crm-service/internal/usecase/client"
	"crm-service/internal/usecase/company"
)

type testAPI struct {
	router    *gin.Engine
	companyID uuid.UUID
	clients   *postgres.ClientRepoPG
}

func setupAPI(t *testing.T, checks map[string]Checker) *testAPI {
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, postgres.Migrate(db))

	clientRepo := postgres.NewClientRepoPG(db, log)
	companyRepo := postgres.NewCompanyRepoPG(db, log)
	authUC := auth.New(postgres.NewUserRepoPG(db, log), "router-test-secret", time.Hour, log)
	companyUC := company.New(companyRepo, auth.ContextUser{}, log)
	clientUC := client.New(clientRepo, client.NewValidator(companyRepo, log), auth.ContextUser{}, log)

	ctx := context.Background()
	_, err = authUC.CreateUser(ctx, "admin", "admin-password", user.RoleAdmin)
	require.NoError(t, err)
	_, err = authUC.CreateUser(ctx, "manager", "manager-password", user.RoleManager)
	require.NoError(t, err)

	seedCtx := user.WithPrincipal(ctx, user.Principal{UserID: uuid.New(), Role: user.RoleAdmin})
	co, err := companyUC.SaveCompany(seedCtx, &companydomain.Company{Name: "Acme"})
	require.NoError(t, err)

	r := SetupRouter(Dependencies{
		ClientHandler:  handler.NewClientHandler(clientUC, log),
		CompanyHandler: handler.NewCompanyHandler(companyUC, log),
		AuthHandler:    handler.NewAuthHandler(authUC, log),
		Tokens:         authUC,
		Checks:         checks,
		Logger:         log,
	})
	return &testAPI{router: r, companyID: co.ID, clients: clientRepo}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) login(t *testing.T, name, password string) string {
	w := a.do(http.MethodPost, "/auth/login", "", handler.LoginRequest{Name: name, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tok auth.Token
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	return tok.Token
}

func (a *testAPI) bulk(n int) []handler.ClientRequest {
	reqs := make([]handler.ClientRequest, n)
	for i := range reqs {
		reqs[i] = handler.ClientRequest{CompanyID: a.companyID, Name: "Jane", Email: "jane@example.com"}
	}
	return reqs
}

func TestRouter_CreateRequiresAdmin(t *testing.T) {
	api := setupAPI(t, nil)
	token := api.login(t, "manager", "manager-password")

	w := api.do(http.MethodPost, "/client", token, api.bulk(3))

	assert.Equal(t, http.StatusForbidden, w.Code)
	all, err := api.clients.FindByName(context.Background(), "Jane")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRouter_ClientLifecycle(t *testing.T) {
	api := setupAPI(t, nil)
	admin := api.login(t, "admin", "admin-password")
	manager := api.login(t, "manager", "manager-password")

	w := api.do(http.MethodPost, "/client", admin, api.bulk(3))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created []handler.ClientResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Len(t, created, 3)
	for _, c := range created {
		assert.NotEqual(t, uuid.Nil, c.ID)
		assert.Equal(t, c.CreatedBy, c.UpdatedBy)
	}

	w = api.do(http.MethodGet, "/client?name=Jane&page=0&size=2", manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page []handler.ClientResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page, 2)

	target := created[0]
	w = api.do(http.MethodPut, "/client", manager, handler.ClientRequest{ID: target.ID, Phone: "555-0100"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated handler.ClientResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Equal(t, "Jane", updated.Name)
	assert.Equal(t, target.CreatedBy, updated.CreatedBy)
	assert.NotEqual(t, target.CreatedBy, updated.UpdatedBy)

	w = api.do(http.MethodDelete, "/client/"+target.ID.String(), manager, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/client/"+target.ID.String(), manager, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodDelete, "/client/"+target.ID.String(), manager, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_BulkCreateIsAtomic(t *testing.T) {
	api := setupAPI(t, nil)
	admin := api.login(t, "admin", "admin-password")
	reqs := api.bulk(2)
	reqs = append(reqs, handler.ClientRequest{CompanyID: uuid.New(), Name: "Jane"})

	w := api.do(http.MethodPost, "/client", admin, reqs)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	all, err := api.clients.FindByName(context.Background(), "Jane")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRouter_Unauthenticated(t *testing.T) {
	api := setupAPI(t, nil)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/client?name=Jane", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/client?name=Jane", "garbage", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, "/auth/login", "", handler.LoginRequest{Name: "admin", Password: "wrong"}).Code)
}

func TestRouter_CompanyWriteRequiresAdmin(t *testing.T) {
	api := setupAPI(t, nil)
	manager := api.login(t, "manager", "manager-password")
	admin := api.login(t, "admin", "admin-password")

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/company", manager, handler.CompanyRequest{Name: "Globex"}).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/company/"+api.companyID.String(), manager, nil).Code)
	assert.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/company", admin, handler.CompanyRequest{Name: "Globex"}).Code)
}

func TestRouter_Health(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		api := setupAPI(t, map[string]Checker{"database": func(context.Context) error { return nil }})

		w := api.do(http.MethodGet, "/health", "", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"ok"`)
	})

	t.Run("Degraded", func(t *testing.T) {
		api := setupAPI(t, map[string]Checker{"redis": func(context.Context) error { return errors.New("connection refused") }})

		w := api.do(http.MethodGet, "/health", "", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestRouter_SwaggerDocument(t *testing.T) {
	api := setupAPI(t, nil)

	w := api.do(http.MethodGet, swaggerDocPath, "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"swagger": "2.0"`)
}
