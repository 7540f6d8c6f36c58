package agent

// Request and response shapes for the conversational AI partner API. All
// nested configuration is static and passed through verbatim; the partner
// service interprets it.

// JoinRequest asks the partner to join an agent to a channel.
type JoinRequest struct {
	Name       string     `json:"name"`
	Properties Properties `json:"properties"`
}

// Properties configures the agent session being started.
type Properties struct {
	Channel          string           `json:"channel"`
	Token            string           `json:"token"`
	AgentRTCUID      string           `json:"agent_rtc_uid"`
	RemoteRTCUIDs    []string         `json:"remote_rtc_uids"`
	IdleTimeout      int              `json:"idle_timeout"`
	AdvancedFeatures AdvancedFeatures `json:"advanced_features"`
	LLM              LLMConfig        `json:"llm"`
	TTS              TTSConfig        `json:"tts"`
	ASR              ASRConfig        `json:"asr"`
	VAD              VADConfig        `json:"vad"`
	Parameters       RuntimeFlags     `json:"parameters"`
}

// AdvancedFeatures toggles partner-side session features.
type AdvancedFeatures struct {
	EnableBHVS  bool `json:"enable_bhvs"`
	EnableAIVAD bool `json:"enable_aivad"`
}

// LLMConfig configures the language model behind the agent.
type LLMConfig struct {
	Style            string          `json:"style"`
	URL              string          `json:"url"`
	APIKey           string          `json:"api_key"`
	SystemMessages   []SystemMessage `json:"system_messages"`
	MaxHistory       int             `json:"max_history"`
	GreetingMessage  string          `json:"greeting_message"`
	FailureMessage   string          `json:"failure_message"`
	SilenceMessage   string          `json:"silence_message"`
	InputModalities  []string        `json:"input_modalities"`
	OutputModalities []string        `json:"output_modalities"`
	Params           LLMParams       `json:"params"`
}

// SystemMessage is one chat-completion system prompt entry.
type SystemMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMParams are forwarded to the model provider.
type LLMParams struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
}

// TTSConfig configures text-to-speech synthesis.
type TTSConfig struct {
	Vendor string    `json:"vendor"`
	Params TTSParams `json:"params"`
}

// TTSParams are vendor-specific synthesis parameters.
type TTSParams struct {
	Key     string `json:"key"`
	ModelID string `json:"model_id"`
	VoiceID string `json:"voice_id"`
}

// ASRConfig configures speech recognition.
type ASRConfig struct {
	Language string `json:"language"`
}

// VADConfig configures voice activity detection.
type VADConfig struct {
	SilenceDurationMS int `json:"silence_duration_ms"`
}

// RuntimeFlags toggles partner-side diagnostics.
type RuntimeFlags struct {
	EnableDump         bool `json:"enable_dump"`
	EnableErrorMessage bool `json:"enable_error_message"`
	EnableDelay        bool `json:"enable_delay"`
}

// JoinResponse is the partner's answer to a join request.
type JoinResponse struct {
	AgentID string `json:"agent_id"`
	Status  string `json:"status"`
}
