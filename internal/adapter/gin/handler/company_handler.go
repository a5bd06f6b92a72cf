package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"crm-service/internal/adapter/gin/response"
	domain "crm-service/internal/domain/company"
	"crm-service/internal/usecase/company"
	"crm-service/pkg/logger"
)

// CompanyHandler handles HTTP requests for company operations
type CompanyHandler struct {
	uc  company.CompanyUsecase
	log *zap.Logger
}

// NewCompanyHandler creates a new CompanyHandler instance
func NewCompanyHandler(uc company.CompanyUsecase, log *zap.Logger) *CompanyHandler {
	return &CompanyHandler{uc: uc, log: log}
}

// CompanyRequest is the JSON body of company create and update requests.
type CompanyRequest struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name" binding:"max=255"`
	Address string    `json:"address" binding:"max=512"`
	Phone   string    `json:"phone" binding:"max=32"`
	Website string    `json:"website" binding:"omitempty,url"`
}

func (r CompanyRequest) toDomain() *domain.Company {
	return &domain.Company{ID: r.ID, Name: r.Name, Address: r.Address, Phone: r.Phone, Website: r.Website}
}

// CompanyResponse represents the HTTP response for company data
type CompanyResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
	Phone   string    `json:"phone"`
	Website string    `json:"website"`
	AuditResponse
}

func newCompanyResponse(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		ID:            c.ID,
		Name:          c.Name,
		Address:       c.Address,
		Phone:         c.Phone,
		Website:       c.Website,
		AuditResponse: newAuditResponse(c.Fields),
	}
}

// FindByName handles GET /company?name=&page=&size=
func (h *CompanyHandler) FindByName(c *gin.Context) {
	name, ok := c.GetQuery("name")
	if !ok {
		response.BadRequest(c, "validation_error", "name is required")
		return
	}
	page, size, ok := pageParams(c)
	if !ok {
		return
	}

	companies, err := h.uc.FindCompanyByName(c.Request.Context(), name, page, size)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]CompanyResponse, len(companies))
	for i := range companies {
		out[i] = newCompanyResponse(&companies[i])
	}
	c.JSON(http.StatusOK, out)
}

// FindByID handles GET /company/:id
func (h *CompanyHandler) FindByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	co, err := h.uc.FindCompanyByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, newCompanyResponse(co))
}

// Create handles POST /company
func (h *CompanyHandler) Create(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create company request", zap.Error(err))
		response.BadRequest(c, "validation_error", err.Error())
		return
	}

	saved, err := h.uc.SaveCompany(c.Request.Context(), req.toDomain())
	if err != nil {
		log.Warn("Gin CreateCompany failed", zap.Error(err))
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCompanyResponse(saved))
}

// Update handles PUT /company
func (h *CompanyHandler) Update(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update company request", zap.Error(err))
		response.BadRequest(c, "validation_error", err.Error())
		return
	}

	saved, err := h.uc.UpdateCompany(c.Request.Context(), req.toDomain())
	if err != nil {
		log.Warn("Gin UpdateCompany failed", zap.Error(err))
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, newCompanyResponse(saved))
}

// Delete handles DELETE /company/:id
func (h *CompanyHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.uc.DeleteCompany(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}
