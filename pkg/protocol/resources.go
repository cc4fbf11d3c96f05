package protocol

// Method names for the resources surface.
const (
	MethodListResources = "resources/list"
	MethodReadResource  = "resources/read"
)

// ConversationURIPrefix is the URI scheme under which the memory server
// exposes conversations as resources.
const ConversationURIPrefix = "memory://conversation/"

// Resource describes a discoverable resource advertised by a server
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ListResourcesResult defines the response for resources/list
type ListResourcesResult struct {
	Resources []Resource `json:"resources"`
}

// ReadResourceParams defines parameters for resources/read
type ReadResourceParams struct {
	URI string `json:"uri"`
}

// ResourceContents is one content entry of a resources/read result
type ResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text"`
}

// ReadResourceResult defines the response for resources/read
type ReadResourceResult struct {
	Contents []ResourceContents `json:"contents"`
}
