package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windfall/kidvocab_service/internal/client"
	"github.com/windfall/kidvocab_service/internal/errors"
	"github.com/windfall/kidvocab_service/internal/logger"
	"github.com/windfall/kidvocab_service/internal/model"
)

func newGradingService(gen TextGenerator) *GradingService {
	return NewGradingService(gen, GradingOptions{MismatchScore: 40, Timeout: time.Second}, logger.NewNop())
}

func TestGrade_Heuristic(t *testing.T) {
	svc := newGradingService(nil)

	tests := []struct {
		name      string
		target    string
		heard     string
		wantScore int
		wantText  string
	}{
		{"exact", "apple", "apple", 100, FeedbackMatch},
		{"contained", "apple", "An Apple please", 100, FeedbackMatch},
		{"case and space", "  Apple ", "APPLE", 100, FeedbackMatch},
		{"mismatch", "apple", "banana", 40, FeedbackMismatch},
		{"empty transcript", "apple", "", 40, FeedbackMismatch},
		{"empty target", "", "apple", 40, FeedbackMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Grade(context.Background(), tt.target, tt.heard)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantText, got.Feedback)
		})
	}
}

func TestGrade_MismatchScoreIsConfigurable(t *testing.T) {
	svc := NewGradingService(nil, GradingOptions{MismatchScore: 0}, logger.NewNop())
	assert.Equal(t, 0, svc.Grade(context.Background(), "apple", "banana").Score)

	svc = NewGradingService(nil, GradingOptions{MismatchScore: 250}, logger.NewNop())
	assert.Equal(t, 100, svc.Grade(context.Background(), "apple", "banana").Score)
}

func TestGrade_Remote(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantScore int
	}{
		{"plain", `{"score": 87, "feedback": "读得很好！"}`, 87},
		{"fenced", "```json\n{\"score\": 62, \"feedback\": \"继续加油！\"}\n```", 62},
		{"clamped high", `{"score": 140, "feedback": "完美！"}`, 100},
		{"clamped low", `{"score": -5, "feedback": "再试试。"}`, 0},
		{"float", `{"score": 85.0, "feedback": "很好！"}`, 85},
		{"fraction rounds", `{"score": 72.6, "feedback": "很好！"}`, 73},
		{"string", `{"score": "85", "feedback": "很好！"}`, 85},
		{"padded string", `{"score": " 90.4 ", "feedback": "很好！"}`, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := respondWith(tt.text, nil)
			got := newGradingService(gen).Grade(context.Background(), "apple", "apple")
			assert.Equal(t, tt.wantScore, got.Score)
			assert.NotEmpty(t, got.Feedback)
			require.Len(t, gen.calls, 1)
			assert.Equal(t, client.ShapeGrade, gen.calls[0].Shape)
			assert.Contains(t, gen.calls[0].Prompt, `Target word: "apple"`)
		})
	}
}

func TestGrade_RemoteFailure(t *testing.T) {
	tests := []struct {
		name string
		gen  *textGeneratorMock
	}{
		{"service error", respondWith("", errors.AIService("boom", fmt.Errorf("503")))},
		{"unparsable", respondWith("not json", nil)},
		{"missing score", respondWith(`{"feedback":"hi"}`, nil)},
		{"null score", respondWith(`{"score":null,"feedback":"hi"}`, nil)},
		{"word score", respondWith(`{"score":"great","feedback":"hi"}`, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newGradingService(tt.gen).Grade(context.Background(), "apple", "apple")
			assert.Equal(t, model.GradeResult{Score: 0, Feedback: FeedbackUnavailable}, got)
			assert.Equal(t, 1, tt.gen.Calls())
		})
	}
}
