// Package aisvc generates test bank questions with the OpenAI chat API.
package aisvc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/pkg/errors"

	"github.com/bukhari/academy/core"
	"github.com/bukhari/academy/core/exam"
)

const systemPrompt = "You are an English teacher creating test questions."

type openaiGenerator struct {
	client *openai.Client
	logger core.Logger
}

var _ exam.Generator = (*openaiGenerator)(nil)

func NewOpenAIGenerator(conf *core.Config, logger core.Logger) exam.Generator {
	return &openaiGenerator{
		client: openai.NewClient(conf.OpenAIAPIKey),
		logger: logger,
	}
}

func (gen *openaiGenerator) Generate(ctx context.Context, level, kind string, count int) ([]exam.Question, error) {
	resp, err := gen.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt(level, kind, count)},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, errors.Wrap(err, "openai chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}
	return parseQuestions(resp.Choices[0].Message.Content)
}

func prompt(level, kind string, count int) string {
	return fmt.Sprintf(`Generate %d %s level %s test questions in JSON format. Each question should have:
- question: string
- options: array of 4 strings
- correct_answer: array with index of correct option (0-3)
- type: "single"
- points: 2

Example format:
[
  {
    "question": "Choose the correct verb: I ___ a student",
    "options": ["am", "is", "are", "be"],
    "correct_answer": [0],
    "type": "single",
    "points": 2
  }
]

Generate %d questions now:`, count, level, kind, count)
}

// parseQuestions decodes the model's reply, tolerating surrounding prose
// by cutting to the outermost JSON array.
func parseQuestions(content string) ([]exam.Question, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, errors.New("no JSON array in response")
	}

	var qs []exam.Question
	if err := json.Unmarshal([]byte(content[start:end+1]), &qs); err != nil {
		return nil, errors.Wrap(err, "parsing generated questions")
	}
	for i := range qs {
		if len(qs[i].Options) == 0 || len(qs[i].CorrectAnswer) == 0 {
			return nil, errors.Errorf("generated question %d is incomplete", i+1)
		}
		if qs[i].Type == "" {
			qs[i].Type = exam.TypeSingle
		}
		if qs[i].Points == 0 {
			qs[i].Points = 2
		}
	}
	return qs, nil
}
