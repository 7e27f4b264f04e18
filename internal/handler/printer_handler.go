// internal/handler/printer_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meter-print-service/internal/service"
	"meter-print-service/internal/utils"
)

// PrinterHandler handles discovery, connection and width requests
type PrinterHandler struct {
	printerService *service.PrinterService
	logger         *utils.ServiceLogger
}

// NewPrinterHandler creates a new printer handler
func NewPrinterHandler(printerService *service.PrinterService, logger *zap.Logger) *PrinterHandler {
	return &PrinterHandler{
		printerService: printerService,
		logger:         utils.NewServiceLogger(logger, "printer-handler"),
	}
}

// RegisterRoutes registers printer routes
func (h *PrinterHandler) RegisterRoutes(router *gin.RouterGroup) {
	printers := router.Group("/printers")
	{
		printers.GET("/scan", h.Scan)
		printers.POST("/connect", h.Connect)
		printers.GET("/saved", h.Saved)
		printers.DELETE("/saved", h.Forget)
		printers.GET("/preferences", h.Preferences)
		printers.GET("/width", h.GetWidth)
		printers.PUT("/width", h.SetWidth)
	}
}

// ConnectRequest selects the printer to connect
type ConnectRequest struct {
	Address string `json:"address" binding:"required" example:"AA:BB:CC:DD:EE:FF"`
}

// WidthRequest sets the print width in dots
type WidthRequest struct {
	Width *float64 `json:"width" binding:"required" example:"576"`
}

// Scan lists paired printers
// @Summary Scan printers
// @Description List paired Bluetooth printers, normalized and deduplicated
// @Tags Printers
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]model.DiscoveredDevice} "Printers found"
// @Failure 403 {object} utils.APIResponse "Permissions denied"
// @Failure 409 {object} utils.APIResponse "Another operation in progress"
// @Failure 503 {object} utils.APIResponse "Bluetooth unavailable"
// @Router /printers/scan [get]
func (h *PrinterHandler) Scan(c *gin.Context) {
	devices, err := h.printerService.Scan(c.Request.Context())
	if err != nil {
		h.logger.Warn("Printer scan failed", zap.Error(err))
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Printers found", devices)
}

// Connect connects a printer and makes it the default
// @Summary Connect printer
// @Description Connect a printer by MAC address and remember it as the default
// @Tags Printers
// @Accept json
// @Produce json
// @Param request body ConnectRequest true "Printer address"
// @Success 200 {object} utils.APIResponse{data=object{address=string}} "Printer connected"
// @Failure 400 {object} utils.APIResponse "Invalid address"
// @Failure 403 {object} utils.APIResponse "Permissions denied"
// @Failure 409 {object} utils.APIResponse "Another operation in progress"
// @Failure 503 {object} utils.APIResponse "Bluetooth unavailable"
// @Router /printers/connect [post]
func (h *PrinterHandler) Connect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	address, err := h.printerService.Connect(c.Request.Context(), req.Address)
	if err != nil {
		h.logger.Warn("Printer connect failed", zap.String("address", req.Address), zap.Error(err))
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Printer connected", gin.H{"address": address})
}

// Saved returns the default printer
// @Summary Saved printer
// @Description Get the persisted default printer address
// @Tags Printers
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{address=string,saved=bool}} "Saved printer"
// @Router /printers/saved [get]
func (h *PrinterHandler) Saved(c *gin.Context) {
	address, ok := h.printerService.Saved(c.Request.Context())
	data := gin.H{"saved": ok, "address": nil}
	if ok {
		data["address"] = address
	}
	utils.SuccessResponse(c, http.StatusOK, "Saved printer", data)
}

// Forget clears the default printer
// @Summary Forget saved printer
// @Description Remove the persisted default printer address
// @Tags Printers
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{saved=bool}} "Saved printer cleared"
// @Failure 409 {object} utils.APIResponse "Another operation in progress"
// @Failure 500 {object} utils.APIResponse "Storage failure"
// @Router /printers/saved [delete]
func (h *PrinterHandler) Forget(c *gin.Context) {
	if err := h.printerService.Forget(c.Request.Context()); err != nil {
		h.logger.Error("Failed to forget saved printer", zap.Error(err))
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Saved printer cleared", gin.H{"saved": false})
}

// Preferences lists the stored preferences
// @Summary Stored preferences
// @Description List every persisted preference row
// @Tags Printers
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]repository.Preference} "Preferences"
// @Failure 500 {object} utils.APIResponse "Storage failure"
// @Router /printers/preferences [get]
func (h *PrinterHandler) Preferences(c *gin.Context) {
	prefs, err := h.printerService.Preferences(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list preferences", zap.Error(err))
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Preferences", prefs)
}

// GetWidth returns the print width
// @Summary Print width
// @Description Get the persisted print width in dots
// @Tags Printers
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{width=int}} "Print width"
// @Router /printers/width [get]
func (h *PrinterHandler) GetWidth(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Print width", gin.H{"width": h.printerService.Width(c.Request.Context())})
}

// SetWidth stores the print width
// @Summary Set print width
// @Description Store the print width; values are normalized (non-positive gives 576, minimum 200)
// @Tags Printers
// @Accept json
// @Produce json
// @Param request body WidthRequest true "Width in dots"
// @Success 200 {object} utils.APIResponse{data=object{width=int}} "Print width stored"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 500 {object} utils.APIResponse "Storage failure"
// @Router /printers/width [put]
func (h *PrinterHandler) SetWidth(c *gin.Context) {
	var req WidthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	width, err := h.printerService.SetWidth(c.Request.Context(), *req.Width)
	if err != nil {
		h.logger.Error("Failed to store print width", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to store print width", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Print width stored", gin.H{"width": width})
}
