package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// OK represents a successful operation.
var OK = Register(&Errno{
	Code:      0,
	HTTP:      http.StatusOK,
	GRPCCode:  codes.OK,
	MessageEN: "Success",
	MessageZH: "成功",
})

// Common errors (Service: 00)
var (
	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryRequest, 0),
		HTTP:      http.StatusBadRequest,
		GRPCCode:  codes.InvalidArgument,
		MessageEN: "Bad request",
		MessageZH: "请求错误",
	})

	// ErrInternal indicates an unexpected internal error.
	ErrInternal = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryInternal, 0),
		HTTP:      http.StatusInternalServerError,
		GRPCCode:  codes.Internal,
		MessageEN: "Internal server error",
		MessageZH: "服务器内部错误",
	})
)

// Rebind errors (Service: 01)
var (
	// ErrComponentNotFound indicates the named component is not registered.
	ErrComponentNotFound = Register(&Errno{
		Code:      MakeCode(ServiceRebind, CategoryResource, 0),
		HTTP:      http.StatusNotFound,
		GRPCCode:  codes.NotFound,
		MessageEN: "Component not found",
		MessageZH: "组件不存在",
	})

	// ErrRebindFailed indicates one or more components failed to rebind.
	ErrRebindFailed = Register(&Errno{
		Code:      MakeCode(ServiceRebind, CategoryInternal, 0),
		HTTP:      http.StatusInternalServerError,
		GRPCCode:  codes.Internal,
		MessageEN: "Rebind failed",
		MessageZH: "重新绑定失败",
	})
)

// Configuration errors (Service: 02)
var (
	// ErrBindFailed indicates configuration could not be bound to a component.
	ErrBindFailed = Register(&Errno{
		Code:      MakeCode(ServiceConfig, CategoryConfig, 0),
		HTTP:      http.StatusInternalServerError,
		GRPCCode:  codes.Internal,
		MessageEN: "Configuration binding failed",
		MessageZH: "配置绑定失败",
	})

	// ErrConfigInvalid indicates configuration failed validation.
	ErrConfigInvalid = Register(&Errno{
		Code:      MakeCode(ServiceConfig, CategoryConfig, 1),
		HTTP:      http.StatusUnprocessableEntity,
		GRPCCode:  codes.InvalidArgument,
		MessageEN: "Configuration validation failed",
		MessageZH: "配置校验失败",
	})

	// ErrConfigSource indicates a configuration source is unavailable.
	ErrConfigSource = Register(&Errno{
		Code:      MakeCode(ServiceConfig, CategoryConfig, 2),
		HTTP:      http.StatusServiceUnavailable,
		GRPCCode:  codes.Unavailable,
		MessageEN: "Configuration source unavailable",
		MessageZH: "配置源不可用",
	})
)
