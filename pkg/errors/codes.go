package errors

// JSON-RPC 2.0 standard error codes. These mirror the protocol package
// values; duplicated as plain ints so this package stays import-free of the
// wire layer.
const (
	// CodeParseError indicates invalid JSON was received by the server
	CodeParseError int = -32700

	// CodeInvalidRequest indicates the JSON sent is not a valid Request object
	CodeInvalidRequest int = -32600

	// CodeMethodNotFound indicates the method does not exist / is not available
	CodeMethodNotFound int = -32601

	// CodeInvalidParams indicates invalid method parameter(s)
	CodeInvalidParams int = -32602

	// CodeInternalError indicates an unclassified internal fault
	CodeInternalError int = -32603
)

// Bus-specific error codes
const (
	// CodeResourceNotFound indicates an unknown conversation id or resource URI
	CodeResourceNotFound int = -32001

	// CodeToolExecution indicates a tool backend failed while executing
	CodeToolExecution int = -32002
)
