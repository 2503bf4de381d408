package process

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ewintr.nl/tubedigest/fetcher"
	"ewintr.nl/tubedigest/model"
	"github.com/sashabaranov/go-openai"
)

const (
	DefaultSummaryModel  = "gpt-4o-mini"
	DefaultAnalysisModel = "gpt-3.5-turbo-1106"
	DefaultMaxChars      = 15000
)

const summarizeSystemPrompt = `You are a helpful assistant that summarizes YouTube videos.`

const summarizePrompt = `Summarize the following YouTube transcript into 5 bullet points:

%s`

const analyzePrompt = `Analyze the sentiment and content of the following YouTube video transcript.

Transcript excerpt:
"%s..."

Please return your analysis as a JSON object with the following keys:
- "summary": A concise 2-3 sentence summary of the main points discussed in the transcript excerpt.
- "sentiment": Classify the overall sentiment towards the main topic as "positive", "neutral", or "negative".
- "confidence": Your confidence level in the sentiment classification, as a float between 0.0 (low confidence) and 1.0 (high confidence).
- "key_topics": A list of the 3-5 most important keywords or topics mentioned.

Ensure the output is valid JSON.`

type EnricherConfig struct {
	SummaryModel  string
	AnalysisModel string
	MaxChars      int
}

type OpenAIEnricher struct {
	client *openai.Client
	config EnricherConfig
}

func NewOpenAIEnricher(client *openai.Client, config EnricherConfig) *OpenAIEnricher {
	if config.SummaryModel == "" {
		config.SummaryModel = DefaultSummaryModel
	}
	if config.AnalysisModel == "" {
		config.AnalysisModel = DefaultAnalysisModel
	}
	if config.MaxChars <= 0 {
		config.MaxChars = DefaultMaxChars
	}

	return &OpenAIEnricher{
		client: client,
		config: config,
	}
}

// Summarize condenses a transcript into bullet points.
func (oe *OpenAIEnricher) Summarize(ctx context.Context, transcript string) (model.Enrichment, error) {
	content, err := oe.complete(ctx, openai.ChatCompletionRequest{
		Model: oe.config.SummaryModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: summarizeSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(summarizePrompt, truncate(transcript, oe.config.MaxChars)),
			},
		},
		Temperature: 0.5,
		MaxTokens:   400,
	})
	if err != nil {
		return model.Enrichment{}, err
	}

	summary := strings.TrimSpace(content)
	switch {
	case summary == "":
		return model.Enrichment{}, model.Malformed(content, errors.New("empty summary"))
	case fetcher.IsPlaceholder(summary):
		return model.Enrichment{}, model.Malformed(content, errors.New("generic reply instead of a summary"))
	}

	return model.Enrichment{Summary: summary}, nil
}

// Analyze asks for a summary with sentiment, confidence and topics. A
// response that does not have that shape is returned as a malformed
// failure, never as a partial result.
func (oe *OpenAIEnricher) Analyze(ctx context.Context, transcript string) (model.Enrichment, error) {
	content, err := oe.complete(ctx, openai.ChatCompletionRequest{
		Model: oe.config.AnalysisModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(analyzePrompt, truncate(transcript, oe.config.MaxChars)),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	})
	if err != nil {
		return model.Enrichment{}, err
	}

	return parseAnalysis(content)
}

func (oe *OpenAIEnricher) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := oe.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", model.ProviderError("chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", model.ProviderError("chat completion returned no choices", nil)
	}

	return resp.Choices[len(resp.Choices)-1].Message.Content, nil
}

func parseAnalysis(raw string) (model.Enrichment, error) {
	var analysis struct {
		Summary    string   `json:"summary"`
		Sentiment  string   `json:"sentiment"`
		Confidence *float64 `json:"confidence"`
		KeyTopics  []string `json:"key_topics"`
	}
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return model.Enrichment{}, model.Malformed(raw, err)
	}

	sentiment := model.Sentiment(strings.ToLower(strings.TrimSpace(analysis.Sentiment)))
	switch {
	case strings.TrimSpace(analysis.Summary) == "":
		return model.Enrichment{}, model.Malformed(raw, errors.New("missing summary"))
	case !sentiment.Valid():
		return model.Enrichment{}, model.Malformed(raw, fmt.Errorf("invalid sentiment %q", analysis.Sentiment))
	case analysis.Confidence == nil:
		return model.Enrichment{}, model.Malformed(raw, errors.New("missing confidence"))
	case *analysis.Confidence < 0 || *analysis.Confidence > 1:
		return model.Enrichment{}, model.Malformed(raw, fmt.Errorf("confidence %v out of range", *analysis.Confidence))
	}

	return model.Enrichment{
		Summary:    strings.TrimSpace(analysis.Summary),
		Sentiment:  sentiment,
		Confidence: *analysis.Confidence,
		KeyTopics:  analysis.KeyTopics,
	}, nil
}

// truncate cuts text to at most max characters.
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	return string(runes[:max])
}
