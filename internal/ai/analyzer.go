package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/floai/flo-assistant/internal/utils"
)

//go:embed prompt.md
var matchPromptTemplate string

const (
	// Job descriptions are pasted free-form and can be huge; the analysis
	// only needs the leading part.
	maxJobDescriptionChars = 4000
	maxResumeChars         = 2000

	defaultMaxLogLength = 200
)

// Analyzer evaluates the candidate profile against a job description using a
// content generator and parses the model's JSON verdict.
type Analyzer struct {
	generator ContentGenerator
	profile   Profile
	logger    *zap.Logger
	maxLogLen int
}

func NewAnalyzer(generator ContentGenerator, profile Profile, logger *zap.Logger, maxLogLength int) *Analyzer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Analyzer{
		generator: generator,
		profile:   profile,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Evaluate produces a match verdict for the given job description. The job
// description and resume text are truncated before prompting.
func (a *Analyzer) Evaluate(ctx context.Context, jobDescription string) (*MatchResult, error) {
	jobDescription = strings.TrimSpace(jobDescription)
	if jobDescription == "" {
		return nil, fmt.Errorf("job description is required")
	}

	resume := a.profile.ResumeText
	if utf8.RuneCountInString(resume) > maxResumeChars {
		resume = string([]rune(resume)[:maxResumeChars])
	}

	profilePayload := map[string]any{
		"name":   a.profile.Name,
		"skills": a.profile.Skills,
		"experience": map[string]any{
			"years": a.profile.Experience.Years,
			"roles": a.profile.Experience.Roles,
		},
		"resume": resume,
	}

	profileJSON, err := json.MarshalIndent(profilePayload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal profile payload: %w", err)
	}

	if utf8.RuneCountInString(jobDescription) > maxJobDescriptionChars {
		jobDescription = string([]rune(jobDescription)[:maxJobDescriptionChars])
	}

	prompt := strings.ReplaceAll(matchPromptTemplate, "{{PROFILE_JSON}}", string(profileJSON))
	prompt = strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", jobDescription)

	a.logger.Debug("job match request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("job match response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	return parseMatchResponse(raw)
}

// parseMatchResponse decodes the model's JSON verdict leniently: fenced code
// blocks are stripped, and scalar types are coerced (a "85" string still
// becomes a matching rate).
func parseMatchResponse(raw string) (*MatchResult, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse match response: %w", err)
	}

	var result MatchResult
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &result,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("build match decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("decode match response: %w", err)
	}

	if result.MatchingRate < 0 {
		result.MatchingRate = 0
	}
	if result.MatchingRate > 100 {
		result.MatchingRate = 100
	}

	return &result, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}

	return strings.TrimSpace(strings.Trim(raw, "`"))
}
