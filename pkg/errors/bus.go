package errors

import (
	"fmt"
)

// NotFoundData carries structured data for not-found errors
type NotFoundData struct {
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id,omitempty"`
	URI          string `json:"uri,omitempty"`
}

// ToolErrorData carries structured data for tool execution errors
type ToolErrorData struct {
	Tool   string `json:"tool"`
	Reason string `json:"reason,omitempty"`
}

// MethodNotFound creates an error for a method a server does not register.
// The message names both the server and the method.
func MethodNotFound(server, method string) BusError {
	return NewErrorf(
		CodeMethodNotFound,
		CategoryProtocol,
		SeverityError,
		"method '%s' not found on server '%s'", method, server,
	)
}

// InvalidRequest creates an error for a structurally invalid request
func InvalidRequest(reason string) BusError {
	return NewError(CodeInvalidRequest, reason, CategoryProtocol, SeverityError)
}

// InvalidParams creates an error for malformed or missing method parameters
func InvalidParams(method string, cause error) BusError {
	return WrapError(
		cause,
		CodeInvalidParams,
		fmt.Sprintf("invalid params for '%s'", method),
		CategoryValidation,
		SeverityError,
	).WithDetail(cause.Error())
}

// MissingParameter creates an error for an absent required parameter
func MissingParameter(name string) BusError {
	return NewErrorf(
		CodeInvalidParams,
		CategoryValidation,
		SeverityError,
		"required parameter '%s' is missing", name,
	)
}

// ConversationNotFound creates an error for an unknown conversation id
func ConversationNotFound(conversationID string) BusError {
	return NewErrorf(
		CodeResourceNotFound,
		CategoryNotFound,
		SeverityError,
		"conversation '%s' not found", conversationID,
	).WithData(&NotFoundData{ResourceType: "conversation", ResourceID: conversationID})
}

// ResourceNotFoundByURI creates an error for an unknown resource URI
func ResourceNotFoundByURI(uri string) BusError {
	return NewErrorf(
		CodeResourceNotFound,
		CategoryNotFound,
		SeverityError,
		"resource at URI '%s' not found", uri,
	).WithData(&NotFoundData{ResourceType: "resource", URI: uri})
}

// ToolExecutionFailed wraps a tool backend failure
func ToolExecutionFailed(tool string, cause error) BusError {
	return WrapError(
		cause,
		CodeToolExecution,
		fmt.Sprintf("tool '%s' execution failed", tool),
		CategoryTool,
		SeverityError,
	).WithDetail(cause.Error()).WithData(&ToolErrorData{Tool: tool, Reason: cause.Error()})
}

// UnknownTool creates an error for a tool name no backend registered
func UnknownTool(tool string) BusError {
	return NewErrorf(
		CodeToolExecution,
		CategoryTool,
		SeverityError,
		"unknown tool '%s'", tool,
	).WithData(&ToolErrorData{Tool: tool, Reason: "not registered"})
}

// Internal wraps an unclassified fault, preserving its diagnostic message
func Internal(operation string, cause error) BusError {
	return WrapError(
		cause,
		CodeInternalError,
		fmt.Sprintf("internal error during %s", operation),
		CategoryInternal,
		SeverityError,
	).WithDetail(cause.Error())
}

// ServerNotRegistered creates a configuration error for an unknown server
// name on the host. This is deliberately not an RPC-coded error: the host
// failing lookup is a wiring bug, not a wire-level outcome.
func ServerNotRegistered(name string) error {
	return fmt.Errorf("server '%s' is not registered on this host", name)
}

// ToCode maps any error onto the nearest taxonomy code, defaulting to
// CodeInternalError for unclassified faults.
func ToCode(err error) int {
	if busErr, ok := AsBusError(err); ok {
		return busErr.Code()
	}
	return CodeInternalError
}
