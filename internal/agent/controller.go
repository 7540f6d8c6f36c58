// Package agent manages the conversational AI agent session on a call channel.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/voicebridge/convoai-relay/internal/config"
)

// ErrNoActiveAgent is returned by Stop when no agent session is running.
var ErrNoActiveAgent = errors.New("no active agent session")

// PartnerAPI is the subset of the partner REST surface the controller drives.
type PartnerAPI interface {
	Join(ctx context.Context, join JoinRequest) (*JoinResponse, error)
	Leave(ctx context.Context, agentID string) error
}

// TokenIssuer produces channel access tokens for the agent's join.
type TokenIssuer interface {
	Issue(channelName, uid string) (string, error)
}

// Controller is a two-state machine over the single process-wide agent
// session: Idle (no agent ID) and Active (agent ID recorded). The mutex is
// held across partner calls so concurrent webhooks cannot race a second
// session into existence.
type Controller struct {
	partner PartnerAPI
	tokens  TokenIssuer
	cfg     *config.Config

	mu      sync.Mutex
	agentID string
}

// NewController creates an idle Controller.
func NewController(partner PartnerAPI, tokens TokenIssuer, cfg *config.Config) *Controller {
	return &Controller{
		partner: partner,
		tokens:  tokens,
		cfg:     cfg,
	}
}

// Active reports whether an agent session is currently running.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agentID != ""
}

// AgentID returns the active session's agent identifier, or "" when idle.
func (c *Controller) AgentID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agentID
}

// Start joins an agent to channelName. The only success path is HTTP 200 with
// a RUNNING status; anything else leaves the controller unchanged. No retry.
func (c *Controller) Start(ctx context.Context, channelName string) error {
	if channelName == "" {
		return errors.New("channel name is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	channelToken, err := c.tokens.Issue(channelName, c.cfg.AgentUID)
	if err != nil {
		return fmt.Errorf("issue agent token: %w", err)
	}
	if channelToken == "" {
		return errors.New("issue agent token: signing certificate not configured")
	}

	resp, err := c.partner.Join(ctx, c.buildJoinRequest(channelName, channelToken))
	if err != nil {
		return fmt.Errorf("start agent on %q: %w", channelName, err)
	}
	if resp.Status != "RUNNING" {
		return fmt.Errorf("start agent on %q: partner status %q", channelName, resp.Status)
	}

	c.agentID = resp.AgentID
	slog.Info("Agent session started", "agent_id", resp.AgentID, "channel", channelName)
	return nil
}

// Stop removes the active agent. When idle it returns ErrNoActiveAgent
// without any outbound call.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.agentID == "" {
		return ErrNoActiveAgent
	}

	if err := c.partner.Leave(ctx, c.agentID); err != nil {
		return fmt.Errorf("stop agent %q: %w", c.agentID, err)
	}

	slog.Info("Agent session stopped", "agent_id", c.agentID)
	c.agentID = ""
	return nil
}

func (c *Controller) buildJoinRequest(channelName, channelToken string) JoinRequest {
	return JoinRequest{
		Name: "pstnai",
		Properties: Properties{
			Channel:       channelName,
			Token:         channelToken,
			AgentRTCUID:   c.cfg.AgentUID,
			RemoteRTCUIDs: []string{c.cfg.DefaultUID},
			IdleTimeout:   120,
			AdvancedFeatures: AdvancedFeatures{
				EnableBHVS:  true,
				EnableAIVAD: true,
			},
			LLM: LLMConfig{
				Style:  "openai",
				URL:    "https://api.openai.com/v1/chat/completions",
				APIKey: c.cfg.OpenAIAPIKey,
				SystemMessages: []SystemMessage{
					{Role: "system", Content: supportAgentPrompt},
				},
				MaxHistory:       10,
				GreetingMessage:  "This is Jack from Agora Support Call center. I am glad to assist you here. Please feel free to ask any questions about Agora or you can report an issue on this call. Please let me know how I can assist you?",
				FailureMessage:   "Please hold on a second.",
				SilenceMessage:   "Are you still there?",
				InputModalities:  []string{"text"},
				OutputModalities: []string{"text"},
				Params: LLMParams{
					Model:     "gpt-4o-mini",
					MaxTokens: 1024,
				},
			},
			TTS: TTSConfig{
				Vendor: "elevenlabs",
				Params: TTSParams{
					Key:     c.cfg.ElevenLabsAPIKey,
					ModelID: "eleven_flash_v2_5",
					VoiceID: c.cfg.ElevenLabsVoiceID,
				},
			},
			ASR: ASRConfig{Language: "en-US"},
			VAD: VADConfig{SilenceDurationMS: 480},
			Parameters: RuntimeFlags{
				EnableDump:         true,
				EnableErrorMessage: true,
				EnableDelay:        true,
			},
		},
	}
}

const supportAgentPrompt = `You are Jack, a friendly and experienced Agora support agent. You have a warm, empathetic personality and genuinely enjoy helping customers solve their problems. Your goal is to make customers feel heard and supported while efficiently addressing their needs.

When handling general inquiries:
- Start with a friendly greeting and show genuine interest in helping
- Use a conversational tone while maintaining professionalism
- Share your knowledge about Agora's products in an engaging way
- Naturally weave in documentation links when relevant, saying something like "I can share a helpful guide about that"

When handling technical issues:
- Express empathy about the problem they're experiencing
- Gather the following information naturally through conversation:
  * Their company name and CID (from Agora Console)
  * The project they're working on
  * What's happening (let them explain in their own words)
  * The channel name if relevant
  * When this started happening (in UTC time)
  * How urgent this is for them (guide them to choose P1, P2, or P3)

After collecting information:
- Acknowledge their situation with empathy
- Summarize what you understand in a conversational way
- Guide them to email support@agora.io, explaining how this will help resolve their issue faster

Your personality traits:
- Warm and approachable
- Patient and understanding
- Knowledgeable but not condescending
- Natural in conversation while being efficient
- Proactive in anticipating needs

Remember to:
- Use conversational transitions between topics
- Show you're actively listening by referencing details they've shared
- Be encouraging and supportive
- Make the interaction feel like a helpful conversation rather than a rigid process`
