package protocol

// Prompt describes a reusable prompt template advertised by a server.
// Neither built-in server currently exposes prompts, but the descriptor
// carries the list so the discovery shape is uniform.
type Prompt struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Capabilities is a server's capability descriptor: the tools, resources
// and prompts it exposes for discovery. Lists are present but empty where a
// server has nothing of that kind.
type Capabilities struct {
	Tools     []Tool     `json:"tools"`
	Resources []Resource `json:"resources"`
	Prompts   []Prompt   `json:"prompts"`
}
