package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"crm-service/internal/adapter/gin/response"
	domain "crm-service/internal/domain/client"
	"crm-service/internal/usecase/client"
	pkgerrors "crm-service/pkg/errors"
)

// MockClientUsecase is a mock implementation of client.ClientUsecase
type MockClientUsecase struct {
	mock.Mock
}

func (m *MockClientUsecase) FindClientByName(ctx context.Context, in client.FindByNameRequest) ([]domain.Client, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Client), args.Error(1)
}

func (m *MockClientUsecase) FindClientByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientUsecase) SaveClient(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientUsecase) SaveClients(ctx context.Context, clients []*domain.Client) ([]domain.Client, error) {
	args := m.Called(ctx, clients)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Client), args.Error(1)
}

func (m *MockClientUsecase) UpdateClient(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientUsecase) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func setupClientTest(t *testing.T) (*gin.Engine, *MockClientUsecase) {
	gin.SetMode(gin.TestMode)
	uc := new(MockClientUsecase)
	h := NewClientHandler(uc, zaptest.NewLogger(t))

	r := gin.New()
	r.GET("/client", h.FindByName)
	r.GET("/client/:id", h.FindByID)
	r.POST("/client", h.Create)
	r.PUT("/client", h.Update)
	r.DELETE("/client/:id", h.Delete)
	return r, uc
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestClientHandler_Create(t *testing.T) {
	t.Run("Bulk Success", func(t *testing.T) {
		r, uc := setupClientTest(t)
		companyID := uuid.New()
		reqs := []ClientRequest{
			{CompanyID: companyID, Name: "A"},
			{CompanyID: companyID, Name: "B"},
			{CompanyID: companyID, Name: "C"},
		}
		saved := []domain.Client{
			{ID: uuid.New(), CompanyID: companyID, Name: "A"},
			{ID: uuid.New(), CompanyID: companyID, Name: "B"},
			{ID: uuid.New(), CompanyID: companyID, Name: "C"},
		}
		uc.On("SaveClients", mock.Anything, mock.MatchedBy(func(cs []*domain.Client) bool {
			return len(cs) == 3 && cs[0].Name == "A" && cs[2].CompanyID == companyID
		})).Return(saved, nil)

		w := doJSON(r, http.MethodPost, "/client", reqs)

		assert.Equal(t, http.StatusCreated, w.Code)
		var got []ClientResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 3)
		for i := range got {
			assert.Equal(t, saved[i].ID, got[i].ID)
			assert.NotEqual(t, uuid.Nil, got[i].ID)
		}
	})

	t.Run("Not A List", func(t *testing.T) {
		r, uc := setupClientTest(t)

		w := doJSON(r, http.MethodPost, "/client", ClientRequest{Name: "A"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		uc.AssertNotCalled(t, "SaveClients", mock.Anything, mock.Anything)
	})

	t.Run("Unknown Company", func(t *testing.T) {
		r, uc := setupClientTest(t)
		uc.On("SaveClients", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewValidationError("companyId", "company does not exist"))

		w := doJSON(r, http.MethodPost, "/client", []ClientRequest{{CompanyID: uuid.New(), Name: "A"}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var body response.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "validation_error", body.Error)
	})
}

func TestClientHandler_FindByID(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, uc := setupClientTest(t)
		c := &domain.Client{ID: uuid.New(), Name: "Jane"}
		uc.On("FindClientByID", mock.Anything, c.ID).Return(c, nil)

		w := doJSON(r, http.MethodGet, "/client/"+c.ID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var got ClientResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "Jane", got.Name)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		r, uc := setupClientTest(t)

		w := doJSON(r, http.MethodGet, "/client/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		uc.AssertNotCalled(t, "FindClientByID", mock.Anything, mock.Anything)
	})

	t.Run("Not Found", func(t *testing.T) {
		r, uc := setupClientTest(t)
		id := uuid.New()
		uc.On("FindClientByID", mock.Anything, id).Return(nil, pkgerrors.NewNotFoundError("client", id.String()))

		w := doJSON(r, http.MethodGet, "/client/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestClientHandler_FindByName(t *testing.T) {
	t.Run("Paged", func(t *testing.T) {
		r, uc := setupClientTest(t)
		page, size := 0, 5
		uc.On("FindClientByName", mock.Anything, client.FindByNameRequest{Name: "Jane", Page: &page, Size: &size}).
			Return(make([]domain.Client, 5), nil)

		w := doJSON(r, http.MethodGet, "/client?name=Jane&page=0&size=5", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var got []ClientResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got, 5)
	})

	t.Run("Unpaged Empty", func(t *testing.T) {
		r, uc := setupClientTest(t)
		uc.On("FindClientByName", mock.Anything, client.FindByNameRequest{Name: "Nobody"}).Return([]domain.Client{}, nil)

		w := doJSON(r, http.MethodGet, "/client?name=Nobody", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("Missing Name", func(t *testing.T) {
		r, _ := setupClientTest(t)

		w := doJSON(r, http.MethodGet, "/client", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Bad Page", func(t *testing.T) {
		r, _ := setupClientTest(t)

		w := doJSON(r, http.MethodGet, "/client?name=Jane&page=x", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestClientHandler_Update(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, uc := setupClientTest(t)
		id := uuid.New()
		uc.On("UpdateClient", mock.Anything, &domain.Client{ID: id, Email: "new@example.com"}).
			Return(&domain.Client{ID: id, Name: "Jane", Email: "new@example.com"}, nil)

		w := doJSON(r, http.MethodPut, "/client", ClientRequest{ID: id, Email: "new@example.com"})

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Missing ID", func(t *testing.T) {
		r, uc := setupClientTest(t)

		w := doJSON(r, http.MethodPut, "/client", map[string]string{"name": "Jane"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		uc.AssertNotCalled(t, "UpdateClient", mock.Anything, mock.Anything)
	})

	t.Run("Not Found", func(t *testing.T) {
		r, uc := setupClientTest(t)
		id := uuid.New()
		uc.On("UpdateClient", mock.Anything, mock.Anything).Return(nil, pkgerrors.NewNotFoundError("client", id.String()))

		w := doJSON(r, http.MethodPut, "/client", ClientRequest{ID: id, Name: "Jane"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestClientHandler_Delete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, uc := setupClientTest(t)
		id := uuid.New()
		uc.On("DeleteClient", mock.Anything, id).Return(nil)

		w := doJSON(r, http.MethodDelete, "/client/"+id.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Not Found", func(t *testing.T) {
		r, uc := setupClientTest(t)
		id := uuid.New()
		uc.On("DeleteClient", mock.Anything, id).Return(pkgerrors.NewNotFoundError("client", id.String()))

		w := doJSON(r, http.MethodDelete, "/client/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
