package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"crm-service/internal/adapter/gin/response"
	"crm-service/internal/domain/audit"
	domain "crm-service/internal/domain/client"
	"crm-service/internal/usecase/client"
	"crm-service/pkg/logger"
)

// ClientHandler handles HTTP requests for client operations
type ClientHandler struct {
	uc  client.ClientUsecase
	log *zap.Logger
}

// NewClientHandler creates a new ClientHandler instance
func NewClientHandler(uc client.ClientUsecase, log *zap.Logger) *ClientHandler {
	return &ClientHandler{uc: uc, log: log}
}

// ClientRequest is the JSON body of client create and update requests.
// Empty fields are left unchanged on update.
type ClientRequest struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"companyId"`
	Name      string    `json:"name" binding:"max=255"`
	Email     string    `json:"email" binding:"omitempty,email"`
	Phone     string    `json:"phone" binding:"max=32"`
}

func (r ClientRequest) toDomain() *domain.Client {
	return &domain.Client{
		ID:        r.ID,
		CompanyID: r.CompanyID,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
	}
}

// AuditResponse carries the audit columns of an entity.
type AuditResponse struct {
	CreatedBy uuid.UUID `json:"createdBy"`
	UpdatedBy uuid.UUID `json:"updatedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newAuditResponse(f audit.Fields) AuditResponse {
	return AuditResponse{CreatedBy: f.CreatedBy, UpdatedBy: f.UpdatedBy, CreatedAt: f.CreatedAt, UpdatedAt: f.UpdatedAt}
}

// ClientResponse represents the HTTP response for client data
type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"companyId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	AuditResponse
}

func newClientResponse(c *domain.Client) ClientResponse {
	return ClientResponse{
		ID:            c.ID,
		CompanyID:     c.CompanyID,
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		AuditResponse: newAuditResponse(c.Fields),
	}
}

func newClientResponses(clients []domain.Client) []ClientResponse {
	out := make([]ClientResponse, len(clients))
	for i := range clients {
		out[i] = newClientResponse(&clients[i])
	}
	return out
}

// FindByName handles GET /client?name=&page=&size=
func (h *ClientHandler) FindByName(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	name, ok := c.GetQuery("name")
	if !ok {
		response.BadRequest(c, "validation_error", "name is required")
		return
	}
	page, size, ok := pageParams(c)
	if !ok {
		return
	}

	log.Debug("Gin FindClientByName request", zap.String("name", name))
	clients, err := h.uc.FindClientByName(c.Request.Context(), client.FindByNameRequest{Name: name, Page: page, Size: size})
	if err != nil {
		log.Warn("Gin FindClientByName failed", zap.Error(err))
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, newClientResponses(clients))
}

// FindByID handles GET /client/:id
func (h *ClientHandler) FindByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	cl, err := h.uc.FindClientByID(c.Request.Context(), id)
	if err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("Gin FindClientByID failed", zap.String("id", id.String()), zap.Error(err))
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, newClientResponse(cl))
}

// Create handles POST /client with a JSON list of clients.
func (h *ClientHandler) Create(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var reqs []ClientRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		log.Warn("Invalid create clients request", zap.Error(err))
		response.BadRequest(c, "validation_error", err.Error())
		return
	}

	clients := make([]*domain.Client, len(reqs))
	for i, r := range reqs {
		clients[i] = r.toDomain()
	}

	log.Info("Gin CreateClients request", zap.Int("count", len(clients)))
	saved, err := h.uc.SaveClients(c.Request.Context(), clients)
	if err != nil {
		log.Warn("Gin CreateClients failed", zap.Error(err))
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, newClientResponses(saved))
}

// Update handles PUT /client
func (h *ClientHandler) Update(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update client request", zap.Error(err))
		response.BadRequest(c, "validation_error", err.Error())
		return
	}
	if req.ID == uuid.Nil {
		response.BadRequest(c, "validation_error", "id is required")
		return
	}

	log.Info("Gin UpdateClient request", zap.String("id", req.ID.String()))
	saved, err := h.uc.UpdateClient(c.Request.Context(), req.toDomain())
	if err != nil {
		log.Warn("Gin UpdateClient failed", zap.String("id", req.ID.String()), zap.Error(err))
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, newClientResponse(saved))
}

// Delete handles DELETE /client/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.uc.DeleteClient(c.Request.Context(), id); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("Gin DeleteClient failed", zap.String("id", id.String()), zap.Error(err))
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}
