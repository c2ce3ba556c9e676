package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aussiebroadwan/voxauth/internal/auth/domain"
	"github.com/aussiebroadwan/voxauth/internal/auth/speech"
	"github.com/aussiebroadwan/voxauth/internal/auth/store"
	"github.com/aussiebroadwan/voxauth/pkg/slogx"
)

// DefaultMaxSampleBytes caps an uploaded recording (about 5 minutes of
// 16 kHz LINEAR16).
const DefaultMaxSampleBytes = 10 << 20

// VoiceService enrolls and checks spoken passphrases.
//
// Matching is exact transcript equality. It is a placeholder and offers
// little assurance: anyone who knows the phrase can say it.
type VoiceService struct {
	Store       store.Store
	Transcriber speech.Transcriber
	Format      speech.SampleFormat

	// TempDir holds request-scoped spool files; empty means os.TempDir.
	TempDir        string
	MaxSampleBytes int64

	Now func() time.Time
}

func (s *VoiceService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Transcribe spools sample to a temp file, hands the bytes to the
// transcriber and removes the file on every path.
func (s *VoiceService) Transcribe(ctx context.Context, sample io.Reader) (string, error) {
	log := slogx.FromContext(ctx)

	limit := s.MaxSampleBytes
	if limit <= 0 {
		limit = DefaultMaxSampleBytes
	}

	f, err := os.CreateTemp(s.TempDir, "voice-*.pcm")
	if err != nil {
		return "", fmt.Errorf("spool sample: %w", err)
	}
	defer func() {
		_ = f.Close()
		if err := os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("failed to remove voice spool file", slog.String("path", f.Name()), slog.Any("error", err))
		}
	}()

	n, err := io.Copy(f, io.LimitReader(sample, limit+1))
	if err != nil {
		return "", fmt.Errorf("spool sample: %w", err)
	}
	if n == 0 {
		return "", fmt.Errorf("%w: empty voice sample", ErrInvalidInput)
	}
	if n > limit {
		return "", fmt.Errorf("%w: voice sample exceeds %d bytes", ErrInvalidInput, limit)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("spool sample: %w", err)
	}
	audio, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("spool sample: %w", err)
	}

	text, err := s.Transcriber.Transcribe(ctx, audio, s.Format)
	if err != nil {
		log.Warn("transcription failed", slog.Any("error", err))
		return "", fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}
	if text == "" {
		return "", fmt.Errorf("%w: empty transcript", ErrTranscriptionFailed)
	}
	return text, nil
}

// Enroll transcribes sample and stores the transcript verbatim as the
// account's voice reference. An existing reference is only replaced when
// overwrite is set.
func (s *VoiceService) Enroll(ctx context.Context, accountID string, sample io.Reader, overwrite bool) (string, error) {
	text, err := s.Transcribe(ctx, sample)
	if err != nil {
		return "", err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		a, err := tx.Accounts().GetAccountByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		if !a.EmailVerified {
			return ErrNotVerified
		}
		if a.VoiceReference != nil && !overwrite {
			return ErrAlreadyEnrolled
		}
		return tx.Accounts().UpdateVoiceReference(ctx, a.ID, text, s.now())
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// Authenticate transcribes sample and compares it byte for byte with the
// stored reference.
func (s *VoiceService) Authenticate(ctx context.Context, accountID string, sample io.Reader) (domain.Account, error) {
	a, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, err
	}
	if !a.EmailVerified {
		return domain.Account{}, ErrNotVerified
	}
	if a.VoiceReference == nil {
		return domain.Account{}, ErrVoiceNotEnrolled
	}

	text, err := s.Transcribe(ctx, sample)
	if err != nil {
		return domain.Account{}, err
	}
	if text != *a.VoiceReference {
		return domain.Account{}, ErrVoiceMismatch
	}
	return a, nil
}
