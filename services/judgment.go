package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

var (
	ErrUpstreamTimeout     = errors.New("judgment model call timed out")
	ErrUpstreamMalformed   = errors.New("judgment model returned a malformed completion")
	ErrUpstreamUnavailable = errors.New("judgment model is unavailable")
)

const (
	SeverityLow    = "경미"
	SeverityMedium = "중간"
	SeverityHigh   = "중대"
)

const summaryMaxChars = 140

const systemPrompt = `너는 한국어로 답하는 'AI 판사'야.
사용자의 사연을 읽고, 가능한 죄명과 근거를 조심스럽게 추정해.
반드시 JSON만 출력하고, 아래 스키마를 정확히 따를 것:
{
  "summary": string,
  "possible_crimes": [
    {"title": string, "basis": string, "severity": "경미"|"중간"|"중대"}
  ],
  "verdict": string,
  "disclaimer": string
}
주의:
- 확실하지 않으면 "가능성이 낮음" 같은 완화 표현을 사용
- 사실관계가 부족하면 그 점을 명시
- 단정적 유죄 표현 금지 (가능성/의심/추정 표현 사용)
- 인격 모욕, 혐오 발언 금지
- 법률 자문이 아님을 disclaimer에 명시`

type Crime struct {
	Title    string `json:"title"`
	Basis    string `json:"basis"`
	Severity string `json:"severity"`
}

type JudgmentResult struct {
	Summary        string  `json:"summary"`
	PossibleCrimes []Crime `json:"possible_crimes"`
	Verdict        string  `json:"verdict"`
	Disclaimer     string  `json:"disclaimer"`
}

// ChatCompleter is the slice of the OpenAI client the engine needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type JudgmentEngine struct {
	client  ChatCompleter
	model   string
	timeout time.Duration
	log     *zap.Logger
}

// NewJudgmentEngine takes a nil client when no API key is configured; Judge
// then fails with ErrUpstreamUnavailable instead of panicking at call time.
func NewJudgmentEngine(client ChatCompleter, model string, timeout time.Duration, log *zap.Logger) *JudgmentEngine {
	return &JudgmentEngine{client: client, model: model, timeout: timeout, log: log}
}

// Judge runs one completion call under the engine's hard timeout and parses
// it into a normalized JudgmentResult. No retry on any failure kind: a second
// call would double the billable spend for an outcome the caller can retry.
func (e *JudgmentEngine) Judge(ctx context.Context, story string) (*JudgmentResult, error) {
	story = strings.TrimSpace(story)

	if e.client == nil {
		return nil, fmt.Errorf("no completion client configured: %w", ErrUpstreamUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0.2,
		MaxTokens:   700,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: story},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("completion exceeded %s: %w", e.timeout, ErrUpstreamTimeout)
		}
		e.log.Warn("completion call failed", zap.Error(err))
		return nil, fmt.Errorf("completion call: %w", ErrUpstreamUnavailable)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("completion has no choices: %w", ErrUpstreamMalformed)
	}

	data := decodeCompletion(resp.Choices[0].Message.Content)
	if data == nil {
		e.log.Warn("completion is not decodable as a judgment",
			zap.Int("length", len(resp.Choices[0].Message.Content)))
		return nil, fmt.Errorf("no judgment object in completion: %w", ErrUpstreamMalformed)
	}

	result := normalizeResult(data, story)
	return &result, nil
}

type rawCrime struct {
	Title    string `json:"title"`
	Basis    string `json:"basis"`
	Severity string `json:"severity"`
}

type rawCompletion struct {
	Summary        string     `json:"summary"`
	PossibleCrimes []rawCrime `json:"possible_crimes"`
	Verdict        string     `json:"verdict"`
	Disclaimer     string     `json:"disclaimer"`
}

// decodeCompletion tries the whole text as JSON first, then scans for the
// first decodable object. Models occasionally wrap the JSON in prose or a
// fenced code block despite the json_object response format.
func decodeCompletion(text string) *rawCompletion {
	var data rawCompletion
	if err := json.Unmarshal([]byte(text), &data); err == nil {
		return &data
	}
	for i, r := range text {
		if r != '{' {
			continue
		}
		var candidate rawCompletion
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&candidate); err == nil {
			return &candidate
		}
	}
	return nil
}

// normalizeResult is the single parse-or-default boundary: every optional
// field is filled here so nothing downstream has to null-check.
func normalizeResult(data *rawCompletion, story string) JudgmentResult {
	summary := strings.TrimSpace(data.Summary)
	if summary == "" {
		summary = shortStory(story)
	}
	verdict := strings.TrimSpace(data.Verdict)
	if verdict == "" {
		verdict = "판단 요약을 제공하지 못했습니다."
	}
	disclaimer := strings.TrimSpace(data.Disclaimer)
	if disclaimer == "" {
		disclaimer = "법률 자문이 아니며 참고용입니다."
	}
	if !strings.Contains(disclaimer, "법률 자문") {
		disclaimer = disclaimer + " (법률 자문이 아님)"
	}

	crimes := make([]Crime, 0, len(data.PossibleCrimes))
	for _, item := range data.PossibleCrimes {
		title := strings.TrimSpace(item.Title)
		basis := strings.TrimSpace(item.Basis)
		if title == "" || basis == "" {
			continue
		}
		crimes = append(crimes, Crime{
			Title:    title,
			Basis:    basis,
			Severity: normalizeSeverity(item.Severity),
		})
	}

	return JudgmentResult{
		Summary:        summary,
		PossibleCrimes: crimes,
		Verdict:        verdict,
		Disclaimer:     disclaimer,
	}
}

func shortStory(story string) string {
	story = strings.TrimSpace(story)
	if story == "" {
		return "입력된 사연이 없습니다."
	}
	runes := []rune(story)
	if len(runes) <= summaryMaxChars {
		return story
	}
	return string(runes[:summaryMaxChars]) + "..."
}

// normalizeSeverity folds free-text severity labels into the fixed set.
// Out-of-vocabulary values become medium rather than passing through.
func normalizeSeverity(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "경미", "low", "minor", "낮음", "경미함", "가벼움":
		return SeverityLow
	case "중간", "medium", "moderate", "보통", "중간정도":
		return SeverityMedium
	case "중대", "high", "major", "severe", "critical", "높음", "심각", "중함":
		return SeverityHigh
	default:
		return SeverityMedium
	}
}
