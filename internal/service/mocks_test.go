package service

import (
	"context"
	"sync"
	"time"

	"github.com/windfall/kidvocab_service/internal/client"
)

var (
	_ TextGenerator   = &textGeneratorMock{}
	_ SpeechGenerator = &speechGeneratorMock{}
	_ AudioCache      = &audioCacheMock{}
	_ ClipStore       = &clipStoreMock{}
	_ EventPublisher  = &eventPublisherMock{}
)

type textGeneratorMock struct {
	GenerateJSONFunc func(ctx context.Context, prompt string, shape client.Shape) (string, error)

	mu    sync.Mutex
	calls []struct {
		Prompt string
		Shape  client.Shape
	}
}

func (m *textGeneratorMock) GenerateJSON(ctx context.Context, prompt string, shape client.Shape) (string, error) {
	if m.GenerateJSONFunc == nil {
		panic("textGeneratorMock.GenerateJSONFunc: method is nil but TextGenerator.GenerateJSON was just called")
	}
	m.mu.Lock()
	m.calls = append(m.calls, struct {
		Prompt string
		Shape  client.Shape
	}{prompt, shape})
	m.mu.Unlock()
	return m.GenerateJSONFunc(ctx, prompt, shape)
}

func (m *textGeneratorMock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type speechGeneratorMock struct {
	GenerateSpeechFunc func(ctx context.Context, req client.SpeechRequest) ([]byte, error)

	mu    sync.Mutex
	calls []client.SpeechRequest
}

func (m *speechGeneratorMock) GenerateSpeech(ctx context.Context, req client.SpeechRequest) ([]byte, error) {
	if m.GenerateSpeechFunc == nil {
		panic("speechGeneratorMock.GenerateSpeechFunc: method is nil but SpeechGenerator.GenerateSpeech was just called")
	}
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	return m.GenerateSpeechFunc(ctx, req)
}

func (m *speechGeneratorMock) Calls() []client.SpeechRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]client.SpeechRequest(nil), m.calls...)
}

type audioCacheMock struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newAudioCacheMock() *audioCacheMock {
	return &audioCacheMock{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *audioCacheMock) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *audioCacheMock) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

type clipStoreMock struct {
	UploadFunc func(ctx context.Context, key string, data []byte, contentType string) (string, error)

	mu   sync.Mutex
	keys []string
}

func (m *clipStoreMock) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	m.keys = append(m.keys, key)
	m.mu.Unlock()
	return m.UploadFunc(ctx, key, data, contentType)
}

type eventPublisherMock struct {
	PublishWithAttributesFunc func(ctx context.Context, data interface{}, attrs map[string]string) error

	mu    sync.Mutex
	attrs []map[string]string
}

func (m *eventPublisherMock) PublishWithAttributes(ctx context.Context, data interface{}, attrs map[string]string) error {
	m.mu.Lock()
	m.attrs = append(m.attrs, attrs)
	m.mu.Unlock()
	return m.PublishWithAttributesFunc(ctx, data, attrs)
}
