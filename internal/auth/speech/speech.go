// Package speech turns recorded audio into text.
package speech

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/voxauth/pkg/retryx"
)

// ErrTranscription is returned when audio could not be turned into text.
var ErrTranscription = errors.New("speech: transcription failed")

// SampleFormat describes the encoding of a submitted recording.
type SampleFormat struct {
	Encoding        string
	SampleRateHertz int32
	LanguageCode    string
}

// DefaultFormat is 16 kHz LINEAR16 PCM in US English.
var DefaultFormat = SampleFormat{
	Encoding:        "LINEAR16",
	SampleRateHertz: 16000,
	LanguageCode:    "en-US",
}

// WithDefaults fills zero fields from DefaultFormat.
func (f SampleFormat) WithDefaults() SampleFormat {
	if f.Encoding == "" {
		f.Encoding = DefaultFormat.Encoding
	}
	if f.SampleRateHertz == 0 {
		f.SampleRateHertz = DefaultFormat.SampleRateHertz
	}
	if f.LanguageCode == "" {
		f.LanguageCode = DefaultFormat.LanguageCode
	}
	return f
}

// Transcriber converts audio to a transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, format SampleFormat) (string, error)
}

// Disabled rejects every request. Used when no provider is configured.
type Disabled struct{}

func (Disabled) Transcribe(context.Context, []byte, SampleFormat) (string, error) {
	return "", fmt.Errorf("%w: no provider configured", ErrTranscription)
}

// Retrying retries a Transcriber under a bounded policy.
type Retrying struct {
	Next   Transcriber
	Policy retryx.Policy
}

func (r Retrying) Transcribe(ctx context.Context, audio []byte, format SampleFormat) (string, error) {
	var text string
	err := retryx.Do(ctx, r.Policy, func(ctx context.Context) error {
		var err error
		text, err = r.Next.Transcribe(ctx, audio, format)
		return err
	})
	if err == nil {
		return text, nil
	}
	if errors.Is(err, ErrTranscription) {
		return "", err
	}
	return "", fmt.Errorf("%w: %w", ErrTranscription, err)
}
