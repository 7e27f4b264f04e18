// internal/handler/label_handler.go
package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meter-print-service/internal/model"
	"meter-print-service/internal/printer"
	"meter-print-service/internal/service"
	"meter-print-service/internal/utils"
	"meter-print-service/internal/zpl"
)

// LabelHandler handles print and preview requests
type LabelHandler struct {
	printerService *service.PrinterService
	logger         *utils.ServiceLogger
}

// NewLabelHandler creates a new label handler
func NewLabelHandler(printerService *service.PrinterService, logger *zap.Logger) *LabelHandler {
	return &LabelHandler{
		printerService: printerService,
		logger:         utils.NewServiceLogger(logger, "label-handler"),
	}
}

// RegisterRoutes registers print and preview routes
func (h *LabelHandler) RegisterRoutes(router *gin.RouterGroup) {
	jobs := router.Group("/print")
	{
		jobs.POST("/hello", h.PrintHello)
		jobs.POST("/bar", h.PrintBar)
		jobs.POST("/ticket", h.PrintTicket)
		jobs.POST("/receipt", h.PrintReceipt)
		jobs.POST("/diagnostic/:kind", h.PrintDiagnostic)
	}
	router.POST("/labels/preview/:kind", h.Preview)
}

// TargetRequest optionally names the printer; the saved one is used otherwise
type TargetRequest struct {
	Address string `json:"address,omitempty" example:"AA:BB:CC:DD:EE:FF"`
}

// BarRequest prints a full-width black bar
type BarRequest struct {
	TargetRequest
	Height     *float64 `json:"height,omitempty" example:"48"`
	TearOffset *float64 `json:"tear_offset,omitempty"`
}

// TicketRequest prints a ticket from literal field values
type TicketRequest struct {
	TargetRequest
	Fields     *zpl.TicketFields `json:"fields,omitempty"`
	TearOffset *float64          `json:"tear_offset,omitempty"`
}

// bindOptional binds a JSON body when one is present
func bindOptional(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (h *LabelHandler) print(c *gin.Context, req service.PrintRequest) {
	result, err := h.printerService.Print(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("Print failed",
			zap.String("label", string(req.Kind)),
			zap.String("address", req.Address),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Label printed", result)
}

// PrintHello prints the two-line test label
// @Summary Print hello label
// @Description Print the two-line diagnostic label to the given or saved printer
// @Tags Print
// @Accept json
// @Produce json
// @Param request body TargetRequest false "Target printer"
// @Success 200 {object} utils.APIResponse{data=service.PrintResult} "Label printed"
// @Failure 400 {object} utils.APIResponse "Invalid address"
// @Failure 409 {object} utils.APIResponse "Another operation in progress"
// @Failure 412 {object} utils.APIResponse "No printer selected"
// @Failure 502 {object} utils.APIResponse "Printer rejected the payload"
// @Router /print/hello [post]
func (h *LabelHandler) PrintHello(c *gin.Context) {
	var req TargetRequest
	if err := bindOptional(c, &req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.print(c, service.PrintRequest{
		LabelRequest: printer.LabelRequest{Kind: model.LabelHello},
		Address:      req.Address,
	})
}

// PrintBar prints a full-width black bar
// @Summary Print black bar
// @Description Print a full-width black bar, used to check head alignment
// @Tags Print
// @Accept json
// @Produce json
// @Param request body BarRequest false "Bar options"
// @Success 200 {object} utils.APIResponse{data=service.PrintResult} "Label printed"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 409 {object} utils.APIResponse "Another operation in progress"
// @Failure 412 {object} utils.APIResponse "No printer selected"
// @Failure 502 {object} utils.APIResponse "Printer rejected the payload"
// @Router /print/bar [post]
func (h *LabelHandler) PrintBar(c *gin.Context) {
	var req BarRequest
	if err := bindOptional(c, &req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.print(c, service.PrintRequest{
		LabelRequest: printer.LabelRequest{
			Kind:       model.LabelBlackBar,
			Height:     req.Height,
			TearOffset: req.TearOffset,
		},
		Address: req.Address,
	})
}

// PrintTicket prints a ticket from literal fields
// @Summary Print ticket
// @Description Print the itemized ticket; missing fields print the sample ticket
// @Tags Print
// @Accept json
// @Produce json
// @Param request body TicketRequest false "Ticket fields"
// @Success 200 {object} utils.APIResponse{data=service.PrintResult} "Label printed"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 409 {object} utils.APIResponse "Another operation in progress"
// @Failure 412 {object} utils.APIResponse "No printer selected"
// @Failure 502 {object} utils.APIResponse "Printer rejected the payload"
// @Router /print/ticket [post]
func (h *LabelHandler) PrintTicket(c *gin.Context) {
	var req TicketRequest
	if err := bindOptional(c, &req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.print(c, service.PrintRequest{
		LabelRequest: printer.LabelRequest{
			Kind:       model.LabelTicket,
			Fields:     req.Fields,
			TearOffset: req.TearOffset,
		},
		Address: req.Address,
	})
}

// PrintReceipt prices a meter reading and prints it
// @Summary Print receipt
// @Description Compute consumption, totals and dates for a reading and print the receipt
// @Tags Print
// @Accept json
// @Produce json
// @Param request body service.ReceiptRequest true "Reading to bill"
// @Success 200 {object} utils.APIResponse{data=object{receipt=billing.Receipt,job=service.PrintResult}} "Receipt printed"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 409 {object} utils.APIResponse "Another operation in progress"
// @Failure 412 {object} utils.APIResponse "No printer selected"
// @Failure 502 {object} utils.APIResponse "Printer rejected the payload"
// @Router /print/receipt [post]
func (h *LabelHandler) PrintReceipt(c *gin.Context) {
	var req service.ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	receipt, result, err := h.printerService.PrintReceipt(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("Receipt print failed", zap.String("address", req.Address), zap.Error(err))
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Receipt printed", gin.H{"receipt": receipt, "job": result})
}

// PrintDiagnostic prints one of the raw diagnostic labels
// @Summary Print diagnostic label
// @Description Print a raw diagnostic payload that ignores the stored width
// @Tags Print
// @Accept json
// @Produce json
// @Param kind path string true "Diagnostic label" Enums(simple, config, safe-width)
// @Param request body TargetRequest false "Target printer"
// @Success 200 {object} utils.APIResponse{data=service.PrintResult} "Label printed"
// @Failure 400 {object} utils.APIResponse "Unknown label"
// @Failure 409 {object} utils.APIResponse "Another operation in progress"
// @Failure 412 {object} utils.APIResponse "No printer selected"
// @Failure 502 {object} utils.APIResponse "Printer rejected the payload"
// @Router /print/diagnostic/{kind} [post]
func (h *LabelHandler) PrintDiagnostic(c *gin.Context) {
	kind := model.LabelKind(c.Param("kind"))
	if !kind.IsDiagnostic() {
		utils.ValidationErrorResponse(c, map[string]string{
			"kind": "must be one of simple, config, safe-width",
		})
		return
	}

	var req TargetRequest
	if err := bindOptional(c, &req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	h.print(c, service.PrintRequest{
		LabelRequest: printer.LabelRequest{Kind: kind},
		Address:      req.Address,
	})
}

// Preview renders a label without printing it
// @Summary Preview label
// @Description Render the ZPL a print would send, using the stored width
// @Tags Labels
// @Accept json
// @Produce json
// @Param kind path string true "Label kind" Enums(hello, bar, ticket, receipt, simple, config, safe-width)
// @Param request body printer.LabelRequest false "Label overrides"
// @Success 200 {object} utils.APIResponse{data=object{kind=string,zpl=string}} "Rendered label"
// @Failure 400 {object} utils.APIResponse "Unknown label"
// @Router /labels/preview/{kind} [post]
func (h *LabelHandler) Preview(c *gin.Context) {
	var req printer.LabelRequest
	if err := bindOptional(c, &req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.Kind = model.LabelKind(c.Param("kind"))

	payload, err := h.printerService.Preview(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Rendered label", gin.H{"kind": req.Kind, "zpl": payload})
}
