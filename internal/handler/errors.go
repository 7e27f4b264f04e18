// internal/handler/errors.go
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"meter-print-service/internal/model"
	"meter-print-service/internal/utils"
)

var statusByKind = []struct {
	kind   error
	status int
}{
	{model.ErrPermissionDenied, http.StatusForbidden},
	{model.ErrInvalidAddress, http.StatusBadRequest},
	{model.ErrInvalidInput, http.StatusBadRequest},
	{model.ErrBluetoothUnavailable, http.StatusServiceUnavailable},
	{model.ErrNoPrinterSelected, http.StatusPreconditionFailed},
	{model.ErrTransmissionFailed, http.StatusBadGateway},
	{model.ErrBusy, http.StatusConflict},
}

// statusFor maps a failure kind to its HTTP status
func statusFor(err error) int {
	for _, s := range statusByKind {
		if errors.Is(err, s.kind) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes err with the operator message and the mapped status
func respondError(c *gin.Context, err error) {
	utils.ErrorResponse(c, statusFor(err), model.UserMessage(err), err)
}
