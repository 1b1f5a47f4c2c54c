package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/forward"
	"fx-forward-desk/internal/pricing"
	"fx-forward-desk/internal/storage"
)

// errBadRequest marks malformed query or body input.
var errBadRequest = errors.New("bad request")

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps a pricing or storage error to an HTTP status and a stable code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, forward.ErrInsufficientCurveData):
		return http.StatusUnprocessableEntity, "insufficient_curve_data"
	case errors.Is(err, forward.ErrMissingOnTnData):
		return http.StatusUnprocessableEntity, "missing_on_tn_data"
	case errors.Is(err, forward.ErrOutOfRange):
		return http.StatusBadRequest, "out_of_range"
	case errors.Is(err, forward.ErrBeforeSpot):
		return http.StatusBadRequest, "before_spot"
	case errors.Is(err, domain.ErrUnrecognizedTenor):
		return http.StatusBadRequest, "unrecognized_tenor"
	case errors.Is(err, pricing.ErrPreSpotTenor):
		return http.StatusBadRequest, "pre_spot_tenor"
	case errors.Is(err, pricing.ErrInvalidTarget):
		return http.StatusBadRequest, "invalid_target"
	case errors.Is(err, pricing.ErrUnknownProduct):
		return http.StatusBadRequest, "unknown_product"
	case errors.Is(err, storage.ErrInvalidInput), errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, storage.ErrDuplicateKey):
		return http.StatusConflict, "duplicate"
	}
	return http.StatusInternalServerError, "internal"
}

func (s *Server) fail(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Code: code})
}
