// Package generate turns selected text into stored flash cards: prompt,
// one provider call, parse, save.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rcliao/flashcards/internal/logging"
	"github.com/rcliao/flashcards/internal/model"
	"github.com/rcliao/flashcards/internal/notify"
	"github.com/rcliao/flashcards/internal/parser"
	"github.com/rcliao/flashcards/internal/provider"
	"github.com/rcliao/flashcards/internal/store"
)

// Instructions is the fixed prompt prefix. The reply format is what the
// parser consumes.
const Instructions = `Create 3 flash cards from the following text. Each flash card should have:
1. A concise question or concept on the front
2. A clear, comprehensive answer on the back
3. 2-3 relevant tags

Format each flash card like this:
CARD 1:
Front: [question/concept]
Back: [answer/explanation]
Tags: [tag1, tag2, tag3]

CARD 2:
Front: [question/concept]
Back: [answer/explanation]
Tags: [tag1, tag2, tag3]

CARD 3:
Front: [question/concept]
Back: [answer/explanation]
Tags: [tag1, tag2, tag3]

Make each flash card focus on a different important concept from the text.`

// MsgCreating is shown when a generation starts.
const MsgCreating = "Creating flash cards..."

var providerTitles = map[string]string{
	"":       "Gemini",
	"gemini": "Gemini",
	"openai": "OpenAI",
}

// MissingKeyMessage asks the user for a key for the named provider.
func MissingKeyMessage(providerName string) string {
	title, ok := providerTitles[providerName]
	if !ok {
		title = providerName
	}
	return "Please enter your " + title + " API key to create flash cards."
}

var (
	// ErrMissingAPIKey means neither config nor the stored setting holds a key.
	ErrMissingAPIKey = errors.New("missing API key")
	// ErrEmptySelection means there is no text to make cards from.
	ErrEmptySelection = errors.New("selection text is empty")
)

// PendingError is returned by Process when the selection was queued for
// the user to finish later.
type PendingError struct {
	Pending *model.Pending
	Err     error
}

func (e *PendingError) Error() string { return e.Err.Error() }
func (e *PendingError) Unwrap() error { return e.Err }

// GeneratorFactory builds a provider for an API key.
type GeneratorFactory func(apiKey string) (provider.Generator, error)

// Service runs generations one at a time.
type Service struct {
	store     store.Store
	factory   GeneratorFactory
	parser    *parser.Parser
	notifier  notify.Notifier
	logger    *slog.Logger
	configKey string
	provider  string
	now       func() time.Time

	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithAPIKey sets a configured key that takes precedence over the stored setting.
func WithAPIKey(key string) Option { return func(s *Service) { s.configKey = key } }

// WithProviderName names the configured provider in user-facing messages.
func WithProviderName(name string) Option { return func(s *Service) { s.provider = name } }

func WithNotifier(n notify.Notifier) Option { return func(s *Service) { s.notifier = n } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithClock fixes the clock used for card ids and timestamps.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// New creates a Service.
func New(st store.Store, factory GeneratorFactory, opts ...Option) *Service {
	s := &Service{
		store:    st,
		factory:  factory,
		notifier: notify.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.Default(s.logger).With("component", "generate")
	s.parser = &parser.Parser{Now: s.now}
	return s
}

// BuildPrompt appends the selection to the fixed instructions.
func BuildPrompt(selection string) string {
	return Instructions + "\n\nText: " + selection
}

// ResolveAPIKey returns the configured key, else the stored geminiApiKey
// setting, else ErrMissingAPIKey.
func (s *Service) ResolveAPIKey(ctx context.Context) (string, error) {
	if s.configKey != "" {
		return s.configKey, nil
	}
	key, err := store.GetStringSetting(ctx, s.store, model.SettingGeminiAPIKey)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(key) == "" {
		return "", ErrMissingAPIKey
	}
	return key, nil
}

// Generate makes cards from selection with apiKey and saves them.
// Provider, parse and store errors are returned unchanged.
func (s *Service) Generate(ctx context.Context, selection, apiKey string) ([]model.FlashCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generate(ctx, selection, apiKey)
}

func (s *Service) generate(ctx context.Context, selection, apiKey string) ([]model.FlashCard, error) {
	if strings.TrimSpace(selection) == "" {
		return nil, ErrEmptySelection
	}
	gen, err := s.factory(apiKey)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("generation request", "provider", gen.Name(), "selection_len", len(selection))
	res, err := gen.Generate(ctx, BuildPrompt(selection))
	if err != nil {
		s.logger.Warn("generation failed", "provider", gen.Name(), "err", err)
		var shape *provider.ResponseShapeError
		if errors.As(err, &shape) && len(shape.Raw) > 0 {
			s.saveDebugResponse(ctx, shape.Raw, "")
		}
		return nil, err
	}
	s.logger.Debug("generation response", "provider", gen.Name(), "bytes", len(res.Raw))

	s.saveDebugResponse(ctx, res.Raw, res.Text)

	cards, err := s.parser.Parse(res.Text, selection)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.SaveCards(ctx, cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// saveDebugResponse stores the reply body under lastGeminiResponse. Bodies
// that are not JSON are stored as a string; an empty body falls back to text.
func (s *Service) saveDebugResponse(ctx context.Context, raw json.RawMessage, text string) {
	var value any = raw
	switch {
	case len(raw) == 0:
		value = text
	case !json.Valid(raw):
		value = string(raw)
	}
	if err := s.store.SetSetting(ctx, model.SettingLastResponse, value); err != nil {
		s.logger.Warn("store last response", "err", err)
		return
	}
	if err := s.store.SetSetting(ctx, model.SettingResponseTimestamp, model.FormatTime(s.now())); err != nil {
		s.logger.Warn("store response timestamp", "err", err)
	}
}

// Process is the full user action: resolve the key, generate, notify.
// Failures queue the selection as a pending entry and return a *PendingError.
func (s *Service) Process(ctx context.Context, selection string) ([]model.FlashCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(selection) == "" {
		return nil, ErrEmptySelection
	}

	key, err := s.ResolveAPIKey(ctx)
	if errors.Is(err, ErrMissingAPIKey) {
		msg := MissingKeyMessage(s.provider)
		notify.Send(ctx, s.notifier, s.logger, notify.Info, msg)
		return nil, s.queue(ctx, selection, msg, err)
	}
	if err != nil {
		return nil, err
	}

	cards, err := s.run(ctx, selection, key)
	if err != nil {
		return nil, s.queue(ctx, selection, "Error creating flash cards: "+err.Error(), err)
	}
	return cards, nil
}

// Retry re-runs a pending entry and removes it when cards were created.
// On failure the entry stays queued as it was.
func (s *Service) Retry(ctx context.Context, id string) ([]model.FlashCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.GetPending(ctx, id)
	if err != nil {
		return nil, err
	}
	key, err := s.ResolveAPIKey(ctx)
	if err != nil {
		return nil, err
	}

	cards, err := s.run(ctx, p.Text, key)
	if err != nil {
		return nil, err
	}
	if err := s.store.RemovePending(ctx, p.ID); err != nil {
		s.logger.Warn("remove pending", "id", p.ID, "err", err)
	}
	return cards, nil
}

func (s *Service) run(ctx context.Context, selection, key string) ([]model.FlashCard, error) {
	notify.Send(ctx, s.notifier, s.logger, notify.Info, MsgCreating)

	cards, err := s.generate(ctx, selection, key)
	if err != nil {
		notify.Send(ctx, s.notifier, s.logger, notify.Error, "Error: "+err.Error())
		return nil, err
	}

	notify.Send(ctx, s.notifier, s.logger, notify.Success, fmt.Sprintf("Created %d flash cards!", len(cards)))
	return cards, nil
}

// queue stores selection as pending. A queueing failure is logged and the
// original error returned.
func (s *Service) queue(ctx context.Context, selection, msg string, cause error) error {
	p, err := s.store.AddPending(ctx, selection, msg)
	if err != nil {
		s.logger.Warn("queue pending", "err", err)
		return cause
	}
	return &PendingError{Pending: p, Err: cause}
}
