package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/windfall/kidvocab_service/internal/client"
	"github.com/windfall/kidvocab_service/internal/errors"
	"github.com/windfall/kidvocab_service/internal/model"
)

// Fixed feedback strings.
const (
	FeedbackMatch       = "太棒了！Great job!"
	FeedbackMismatch    = "再试一次吧！Try again!"
	FeedbackUnavailable = "评分服务暂时不可用。"
)

// GradingOptions configures the pronunciation grader.
type GradingOptions struct {
	// MismatchScore is the heuristic score for a transcript that does not
	// contain the target word.
	MismatchScore int
	Timeout       time.Duration
}

// GradingService scores a recognized utterance against a target word.
type GradingService struct {
	generator TextGenerator
	opts      GradingOptions
	log       zerolog.Logger
}

// NewGradingService creates a new grading service. A nil generator selects
// the substring heuristic.
func NewGradingService(generator TextGenerator, opts GradingOptions, log zerolog.Logger) *GradingService {
	opts.MismatchScore = model.ClampScore(opts.MismatchScore)
	return &GradingService{
		generator: generator,
		opts:      opts,
		log:       log,
	}
}

// Grade returns a score in [0, 100] and short feedback. It never fails.
func (s *GradingService) Grade(ctx context.Context, targetWord, recognizedText string) model.GradeResult {
	if s.generator == nil {
		return s.heuristic(targetWord, recognizedText)
	}

	remote := func(ctx context.Context) (model.GradeResult, error) {
		return s.gradeRemote(ctx, targetWord, recognizedText)
	}
	fallback := func(error) model.GradeResult {
		return model.GradeResult{Score: 0, Feedback: FeedbackUnavailable}
	}

	return WithFallback(ctx, s.log, "grade_pronunciation", remote, fallback)
}

func (s *GradingService) heuristic(targetWord, recognizedText string) model.GradeResult {
	target := strings.ToLower(strings.TrimSpace(targetWord))
	heard := strings.ToLower(strings.TrimSpace(recognizedText))

	if target != "" && strings.Contains(heard, target) {
		return model.GradeResult{Score: 100, Feedback: FeedbackMatch}
	}
	return model.GradeResult{Score: s.opts.MismatchScore, Feedback: FeedbackMismatch}
}

func (s *GradingService) gradeRemote(ctx context.Context, targetWord, recognizedText string) (model.GradeResult, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	text, err := s.generator.GenerateJSON(ctx, gradingPrompt(targetWord, recognizedText), client.ShapeGrade)
	if err != nil {
		return model.GradeResult{}, err
	}

	var parsed struct {
		Score    json.RawMessage `json:"score"`
		Feedback string          `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), &parsed); err != nil {
		return model.GradeResult{}, errors.Unparsable("failed to parse grade", err)
	}
	score, err := parseScore(parsed.Score)
	if err != nil {
		return model.GradeResult{}, err
	}

	return model.GradeResult{
		Score:    model.ClampScore(score),
		Feedback: strings.TrimSpace(parsed.Feedback),
	}, nil
}

// parseScore accepts 85, 85.0 and "85". Fractions are rounded.
func parseScore(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errors.Unparsable("grade has no score", nil)
	}

	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		var text string
		if json.Unmarshal(raw, &text) != nil {
			return 0, errors.Unparsable("grade score is not a number", err)
		}
		if value, err = strconv.ParseFloat(strings.TrimSpace(text), 64); err != nil {
			return 0, errors.Unparsable("grade score is not a number", err)
		}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errors.Unparsable("grade score is not finite", nil)
	}
	return int(math.Round(math.Max(0, math.Min(value, 100)))), nil
}

func gradingPrompt(targetWord, recognizedText string) string {
	return fmt.Sprintf(`I am an English teacher for primary school students.
Target word: %q
Student said (transcribed): %q

Task: Compare the phonetics and spelling similarity.
1. Give a score from 0 to 100 based on how close the spoken text is to the target word.
2. Give a 1-sentence simple and encouraging feedback in Chinese suitable for a child.

Output JSON.`, targetWord, recognizedText)
}
