package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/netbill/netbill/internal/api/dto"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/logger"
	"github.com/netbill/netbill/internal/service"
)

type ConnectionHandler struct {
	connectionService service.ConnectionService
	logger            *logger.Logger
}

func NewConnectionHandler(connectionService service.ConnectionService, logger *logger.Logger) *ConnectionHandler {
	return &ConnectionHandler{
		connectionService: connectionService,
		logger:            logger,
	}
}

// @Summary Register a new connection
// @Description Registers a new connection for the authenticated user
// @Tags Connections
// @Accept json
// @Produce json
// @Param connection body dto.CreateConnectionRequest true "Connection request"
// @Success 201 {object} dto.ConnectionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /connections [post]
// @Security ApiKeyAuth
func (h *ConnectionHandler) CreateConnection(c *gin.Context) {
	var req dto.CreateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.connectionService.CreateConnection(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// @Summary List my connections
// @Description Lists the caller's connections, sweeping stale subscription state first
// @Tags Connections
// @Produce json
// @Success 200 {object} dto.ListConnectionsResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /connections [get]
// @Security ApiKeyAuth
func (h *ConnectionHandler) ListConnections(c *gin.Context) {
	response, err := h.connectionService.ListConnections(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Get a connection by ID
// @Description Retrieves one of the caller's connections
// @Tags Connections
// @Produce json
// @Param id path string true "Connection ID"
// @Success 200 {object} dto.ConnectionResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /connections/{id} [get]
// @Security ApiKeyAuth
func (h *ConnectionHandler) GetConnection(c *gin.Context) {
	response, err := h.connectionService.GetConnection(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Update a connection
// @Description Updates one of the caller's connections
// @Tags Connections
// @Accept json
// @Produce json
// @Param id path string true "Connection ID"
// @Param connection body dto.UpdateConnectionRequest true "Connection update"
// @Success 200 {object} dto.ConnectionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /connections/{id} [put]
// @Security ApiKeyAuth
func (h *ConnectionHandler) UpdateConnection(c *gin.Context) {
	var req dto.UpdateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.connectionService.UpdateConnection(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Delete a connection
// @Description Deletes one of the caller's connections; subscriptions remain as history
// @Tags Connections
// @Produce json
// @Param id path string true "Connection ID"
// @Success 200 {object} gin.H
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /connections/{id} [delete]
// @Security ApiKeyAuth
func (h *ConnectionHandler) DeleteConnection(c *gin.Context) {
	if err := h.connectionService.DeleteConnection(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary List all connections
// @Description Lists every connection in the system
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.ListConnectionsResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /admin/connections [get]
// @Security ApiKeyAuth
func (h *ConnectionHandler) ListAllConnections(c *gin.Context) {
	response, err := h.connectionService.ListAllConnections(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
