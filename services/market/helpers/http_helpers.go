package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"memorabilia-market/internal/marketerrors"
	"memorabilia-market/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// report json field names instead of Go field names in validation errors
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	}
}

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)

	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		utils.JSONValidationError(c, http.StatusBadRequest, wrappedErr, "invalid request payload", FieldErrors(vErrs))
	} else {
		utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	}
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// FieldErrors converts validator errors into response field errors
func FieldErrors(vErrs validator.ValidationErrors) []utils.FieldError {
	fields := make([]utils.FieldError, 0, len(vErrs))
	for _, fe := range vErrs {
		fields = append(fields, utils.FieldError{
			Field:   fieldPath(fe),
			Message: fieldMessage(fe),
		})
	}
	return fields
}

// fieldPath drops the top-level struct name: "PlaceBidRequest.amount" -> "amount"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	default:
		return "failed the " + fe.Tag() + " rule"
	}
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	var tooLow *marketerrors.BidTooLowError
	switch {
	case errors.As(err, &tooLow):
		return http.StatusBadRequest, fmt.Sprintf("Bid must be higher than %.2f", tooLow.Floor)
	case errors.Is(err, marketerrors.ErrUnauthorized):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, marketerrors.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid or expired token"
	case errors.Is(err, marketerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, marketerrors.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, marketerrors.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, marketerrors.ErrOrderNotFound):
		return http.StatusNotFound, "order not found"
	case errors.Is(err, marketerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, marketerrors.ErrNoBids):
		return http.StatusNotFound, "no bids found for product"
	case errors.Is(err, marketerrors.ErrNotAuction):
		return http.StatusBadRequest, "Cannot bid on fixed-price items"
	case errors.Is(err, marketerrors.ErrAuctionEnded):
		return http.StatusBadRequest, "Auction has ended"
	case errors.Is(err, marketerrors.ErrBidTooLow):
		return http.StatusBadRequest, "bid amount too low"
	case errors.Is(err, marketerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, marketerrors.ErrNoEndDate):
		return http.StatusBadRequest, "countdown requires an auction with an end date"
	case errors.Is(err, marketerrors.ErrInvalidProduct):
		return http.StatusBadRequest, "invalid product details"
	case errors.Is(err, marketerrors.ErrInvalidOrder):
		return http.StatusBadRequest, "invalid order details"
	case errors.Is(err, marketerrors.ErrInvalidUser):
		return http.StatusBadRequest, "invalid user details"
	case errors.Is(err, marketerrors.ErrUserExists):
		return http.StatusConflict, "username or email already registered"
	case errors.Is(err, marketerrors.ErrLockUnavailable):
		return http.StatusServiceUnavailable, "bidding is busy, please retry"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondError maps err, writes the error envelope and logs it. Server errors log at error level.
func RespondError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["status"] = status
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", fields)
		return
	}
	utils.Warn(handlerName+": request rejected", fields)
}

// ParseIDParam reads a positive integer path parameter, answering 400 when it is malformed
func ParseIDParam(c *gin.Context, handlerName, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		utils.JSONError(c, http.StatusBadRequest, fmt.Errorf("invalid %s %q", name, raw), "invalid "+name)
		utils.Warn(handlerName+": invalid path parameter", map[string]any{"param": name, "value": raw})
		return 0, false
	}
	return id, true
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
