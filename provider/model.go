package provider

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"pdl/value"
)

// mockModelProvider is the "mock" platform's generator: it returns its data
// argument when that is a string, and "" otherwise. It never makes a network
// call. A block's `mock_response` does not pass through it — evalModel uses
// that text directly without calling any provider.
type mockModelProvider struct{}

func (m *mockModelProvider) GenerateText(ctx context.Context, modelID string, messages []value.ChatMessage, params ModelDefaults, data any) (string, error) {
	if s, ok := data.(string); ok {
		return s, nil
	}
	return "", nil
}

// httpModelProvider is the shared shape for the three concrete network
// providers (bam/GenAI, watsonx, openai): a resty client plus one request
// builder shared by all three, which POSTs to <baseURL>/generate, grounded on
// plugins/http/plugin.go's resty.New()...Execute() pattern.
type httpModelProvider struct {
	client   *resty.Client
	baseURL  string
	apiKey   string
	platform string
}

func newGenAIProvider(cfg *RegistryConfig) TextGenerator {
	return &httpModelProvider{
		client:   resty.New(),
		baseURL:  cfg.GenAIAPI,
		apiKey:   cfg.GenAIKey,
		platform: "bam",
	}
}

func newWatsonxProvider(cfg *RegistryConfig) TextGenerator {
	return &httpModelProvider{
		client:   resty.New(),
		baseURL:  cfg.WatsonxAPI,
		apiKey:   cfg.WatsonxKey,
		platform: "watsonx",
	}
}

func newOpenAIProvider(cfg *RegistryConfig) TextGenerator {
	base := cfg.OpenAIBaseURL
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	return &httpModelProvider{
		client:   resty.New(),
		baseURL:  base,
		apiKey:   cfg.OpenAIAPIKey,
		platform: "openai",
	}
}

func (h *httpModelProvider) GenerateText(ctx context.Context, modelID string, messages []value.ChatMessage, params ModelDefaults, data any) (string, error) {
	if h.baseURL == "" || h.apiKey == "" {
		return "", fmt.Errorf("%s provider: missing credentials (base URL or API key)", h.platform)
	}

	body := map[string]any{
		"model":    modelID,
		"messages": chatMessagesToNative(messages),
		"parameters": map[string]any{
			"decoding_method":        params.Decoding,
			"max_new_tokens":         params.MaxNewTokens,
			"min_new_tokens":         params.MinNewTokens,
			"repetition_penalty":     params.RepetitionPenalty,
			"include_stop_sequence":  params.IncludeStopSequence,
		},
	}
	if data != nil {
		body["data"] = data
	}

	var result struct {
		Results []struct {
			GeneratedText string `json:"generated_text"`
		} `json:"results"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+h.apiKey).
		SetBody(body).
		SetResult(&result).
		Post(h.baseURL + "/generate")
	if err != nil {
		return "", fmt.Errorf("%s provider request failed: %w", h.platform, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%s provider returned status %s", h.platform, resp.Status())
	}
	if len(result.Results) > 0 {
		return result.Results[0].GeneratedText, nil
	}
	if len(result.Choices) > 0 {
		return result.Choices[0].Message.Content, nil
	}
	return "", nil
}

func chatMessagesToNative(messages []value.ChatMessage) []map[string]any {
	out := make([]map[string]any, len(messages))
	for i, m := range messages {
		out[i] = map[string]any{"role": m.Role, "content": m.Content}
	}
	return out
}
