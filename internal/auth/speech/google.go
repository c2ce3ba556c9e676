package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gspeech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aussiebroadwan/voxauth/pkg/retryx"
)

// errNoSpeech means the provider answered but heard nothing.
var errNoSpeech = errors.New("no speech recognised")

type recognizeFunc func(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)

// GoogleTranscriber uses the Cloud Speech-to-Text synchronous API.
type GoogleTranscriber struct {
	recognize recognizeFunc
	close     func() error
}

// NewGoogleTranscriber dials the speech API. An empty credentialsFile falls
// back to application default credentials.
func NewGoogleTranscriber(ctx context.Context, credentialsFile string) (*GoogleTranscriber, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := gspeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &GoogleTranscriber{recognize: c.Recognize, close: c.Close}, nil
}

func (g *GoogleTranscriber) Close() error {
	if g.close == nil {
		return nil
	}
	return g.close()
}

func (g *GoogleTranscriber) Transcribe(ctx context.Context, audio []byte, format SampleFormat) (string, error) {
	if len(audio) == 0 {
		return "", retryx.Permanent(fmt.Errorf("%w: empty audio", ErrTranscription))
	}
	req, err := buildRequest(audio, format.WithDefaults())
	if err != nil {
		return "", retryx.Permanent(err)
	}

	resp, err := g.recognize(ctx, req)
	if err != nil {
		if status.Code(err) == codes.InvalidArgument {
			return "", retryx.Permanent(fmt.Errorf("%w: %w", ErrTranscription, err))
		}
		return "", err
	}

	text := JoinResults(resp)
	if strings.TrimSpace(text) == "" {
		return "", retryx.Permanent(fmt.Errorf("%w: %w", ErrTranscription, errNoSpeech))
	}
	return text, nil
}

func buildRequest(audio []byte, f SampleFormat) (*speechpb.RecognizeRequest, error) {
	enc, ok := speechpb.RecognitionConfig_AudioEncoding_value[strings.ToUpper(f.Encoding)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown encoding %q", ErrTranscription, f.Encoding)
	}
	return &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_AudioEncoding(enc),
			SampleRateHertz: f.SampleRateHertz,
			LanguageCode:    f.LanguageCode,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	}, nil
}

// JoinResults concatenates the top alternative of each result, one per line.
func JoinResults(resp *speechpb.RecognizeResponse) string {
	if resp == nil {
		return ""
	}
	parts := make([]string, 0, len(resp.GetResults()))
	for _, r := range resp.GetResults() {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		parts = append(parts, alts[0].GetTranscript())
	}
	return strings.Join(parts, "\n")
}
