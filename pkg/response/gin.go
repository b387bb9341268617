package response

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/rebind/pkg/errors"
)

// ContextKeyRequestID is the gin context key holding the request ID.
const ContextKeyRequestID = "request_id"

// Write writes an error or a success payload to the gin context using the
// unified envelope. It handles both *errors.Errno and plain errors,
// mapping the latter to ErrInternal.
func Write(c *gin.Context, err error, data interface{}) {
	var resp *Response
	switch {
	case err == nil:
		resp = Success(data)
	default:
		if errno, ok := err.(*errors.Errno); ok {
			resp = ErrWithData(errno, data)
		} else {
			resp = ErrWithData(errors.ErrInternal.WithMessage(err.Error()), data)
		}
	}

	resp.WithTimestamp(time.Now().UnixMilli())
	if requestID := c.GetString(ContextKeyRequestID); requestID != "" {
		resp.WithRequestID(requestID)
	}

	c.JSON(resp.HTTPStatus(), resp)
}

// WriteInternal writes the generic internal-error envelope. Used by the
// recovery middleware where no meaningful error value exists.
func WriteInternal(c *gin.Context) {
	Write(c, errors.ErrInternal, nil)
}
