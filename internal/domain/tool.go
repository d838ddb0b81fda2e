package domain

import "encoding/json"

// ToolID identifies a tool page in the catalog.
type ToolID string

const (
	ToolImageGenerator ToolID = "image-generator"
	ToolVoiceEnhancer  ToolID = "voice-enhancer"
	ToolTextSummarizer ToolID = "text-summarizer"
	ToolTranslator     ToolID = "translator"
	ToolChatAssistant  ToolID = "chat-assistant"
)

// Gradient is the pair of accent colors a tool page is drawn with.
type Gradient struct {
	From string
	To   string
}

// ToolDescriptor is the catalog entry for one tool.
type ToolDescriptor struct {
	ID          ToolID
	Title       string
	Heading     string // page heading shown above the input
	Description string
	Path        string
	Action      string // label of the submit action
	Busy        string // label shown while the invocation is in flight
	Accent      Gradient
	// InputSchema is the JSON Schema for structured payloads given on the
	// command line. Nil means the payload is plain text.
	InputSchema json.RawMessage
}

var catalog = []ToolDescriptor{
	{
		ID:          ToolImageGenerator,
		Title:       "AI Image Generator",
		Heading:     "Create Your Image",
		Description: "Transform your ideas into stunning visuals with our advanced AI image generation technology.",
		Path:        "/image-generator",
		Action:      "Generate Image",
		Busy:        "Generating...",
		Accent:      Gradient{From: "#a855f7", To: "#ec4899"},
	},
	{
		ID:          ToolVoiceEnhancer,
		Title:       "Voice Enhancer",
		Heading:     "Upload Audio",
		Description: "Improve audio quality instantly with AI-powered voice enhancement and noise reduction.",
		Path:        "/voice-enhancer",
		Action:      "Enhance Audio",
		Busy:        "Enhancing Audio...",
		Accent:      Gradient{From: "#3b82f6", To: "#06b6d4"},
		InputSchema: json.RawMessage(`{
			"type": "object",
			"required": ["path"],
			"properties": {
				"path": {"type": "string", "minLength": 1},
				"noise_reduction": {"type": "boolean"},
				"voice_clarity": {"type": "boolean"},
				"echo_removal": {"type": "boolean"},
				"volume_normalization": {"type": "boolean"}
			},
			"additionalProperties": false
		}`),
	},
	{
		ID:          ToolTextSummarizer,
		Title:       "Text Summarizer",
		Heading:     "Input Text",
		Description: "Condense long documents and articles into key points while preserving essential information.",
		Path:        "/text-summarizer",
		Action:      "Summarize Text",
		Busy:        "Summarizing...",
		Accent:      Gradient{From: "#22c55e", To: "#10b981"},
		InputSchema: json.RawMessage(`{
			"type": "object",
			"required": ["text"],
			"properties": {
				"text": {"type": "string"},
				"length": {"enum": ["short", "medium", "detailed"]}
			},
			"additionalProperties": false
		}`),
	},
	{
		ID:          ToolTranslator,
		Title:       "Translator",
		Heading:     "Translate Text",
		Description: "Break language barriers with accurate, context-aware translations across 100+ languages.",
		Path:        "/translator",
		Action:      "Translate",
		Busy:        "Translating...",
		Accent:      Gradient{From: "#f97316", To: "#ef4444"},
		InputSchema: json.RawMessage(`{
			"type": "object",
			"required": ["text"],
			"properties": {
				"text": {"type": "string"},
				"source": {"type": "string", "minLength": 2},
				"target": {"type": "string", "minLength": 2}
			},
			"additionalProperties": false
		}`),
	},
	{
		ID:          ToolChatAssistant,
		Title:       "Chat Assistant",
		Heading:     "AI Assistant",
		Description: "Your intelligent writing companion for brainstorming, content creation, and problem-solving.",
		Path:        "/chat-assistant",
		Action:      "Send",
		Busy:        "Typing...",
		Accent:      Gradient{From: "#6366f1", To: "#a855f7"},
	},
}

// Catalog returns every tool in display order.
func Catalog() []ToolDescriptor {
	out := make([]ToolDescriptor, len(catalog))
	copy(out, catalog)
	return out
}

// LookupTool returns the descriptor for id.
func LookupTool(id ToolID) (ToolDescriptor, error) {
	for _, d := range catalog {
		if d.ID == id {
			return d, nil
		}
	}
	return ToolDescriptor{}, NewSubSystemError("tool", "LookupTool", ErrNotFound, string(id))
}
