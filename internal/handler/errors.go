package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"

	"yidino-api/internal/logic"
	snapshotpersist "yidino-api/internal/persistence/snapshot"
	"yidino-api/internal/types"
	"yidino-api/pkg/market/solanarpc"
	"yidino-api/pkg/poller"
	"yidino-api/pkg/wallet"
)

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", logic.ErrBadRequest, err)
}

// ErrorHandler maps logic errors to HTTP status codes. Register it with
// httpx.SetErrorHandlerCtx.
func ErrorHandler(ctx context.Context, err error) (int, any) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		logx.WithContext(ctx).Errorf("request failed: %v", err)
	}
	return code, &types.ErrorResponse{Code: code, Message: err.Error()}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, logic.ErrBadRequest),
		errors.Is(err, wallet.ErrInvalidAddress),
		errors.Is(err, solanarpc.ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.Is(err, snapshotpersist.ErrNoSnapshot):
		return http.StatusNotFound
	case errors.Is(err, logic.ErrDexDisabled),
		errors.Is(err, wallet.ErrNotConfigured),
		errors.Is(err, poller.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
