package factory

import (
	"fmt"

	"ai-knowledge-bot/pkg/llm"
	"ai-knowledge-bot/pkg/llm/huggingface"
	"ai-knowledge-bot/pkg/llm/ollama"
)

// NewLLMProvider builds the chat provider named by providerType. baseURL is
// the provider's endpoint; empty selects its public default.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "huggingface":
		if apiKey == "" {
			return nil, fmt.Errorf("huggingface provider requires an api key")
		}
		return huggingface.NewHuggingFaceProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
