package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/voxauth/internal/auth/limiter"
	"github.com/aussiebroadwan/voxauth/internal/auth/speech"
	"github.com/aussiebroadwan/voxauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/voxauth/pkg/cryptox"
)

var t0 = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestMain(m *testing.M) {
	cryptox.SetPepper("service-test-pepper")
	os.Exit(m.Run())
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// recordingMailer keeps the last code sent to each address.
type recordingMailer struct {
	mu   sync.Mutex
	fail error
	last map[string]string
	sent int
}

func (m *recordingMailer) SendOTP(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if m.last == nil {
		m.last = make(map[string]string)
	}
	m.last[to] = code
	m.sent++
	return nil
}

func (m *recordingMailer) Code(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last[to]
}

// echoTranscriber "hears" the audio bytes as text. The sample "static"
// fails like an unreachable provider.
type echoTranscriber struct {
	mu    sync.Mutex
	calls int
}

func (e *echoTranscriber) Transcribe(_ context.Context, audio []byte, _ speech.SampleFormat) (string, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if string(audio) == "static" {
		return "", errors.New("provider unreachable")
	}
	return string(audio), nil
}

func (e *echoTranscriber) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

type harness struct {
	svc     *AccountService
	store   *sqlite.Store
	clock   *clock
	mailer  *recordingMailer
	speech  *echoTranscriber
	tempDir string
}

func fixedOTP() (string, error) { return "123456", nil }

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessOn(t, ":memory:")
}

// newHarnessOn builds the harness over a store opened with dsn.
func newHarnessOn(t *testing.T, dsn string) *harness {
	t.Helper()

	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	clk := &clock{t: t0}
	m := &recordingMailer{}
	tr := &echoTranscriber{}
	dir := t.TempDir()

	sessions, err := NewSessionService(testSecret, "voxauth-test", time.Hour, clk.Now)
	require.NoError(t, err)

	svc := &AccountService{
		Store: st,
		OTP: &OTPService{
			Store:    st,
			TTL:      10 * time.Minute,
			Generate: fixedOTP,
			Now:      clk.Now,
		},
		Correlation: CorrelationIssuer{},
		Voice: &VoiceService{
			Store:          st,
			Transcriber:    tr,
			Format:         speech.DefaultFormat,
			TempDir:        dir,
			MaxSampleBytes: 1024,
			Now:            clk.Now,
		},
		Sessions: sessions,
		Mailer:   m,
		Limiter:  limiter.Nop{},
		Now:      clk.Now,
	}

	return &harness{svc: svc, store: st, clock: clk, mailer: m, speech: tr, tempDir: dir}
}

func (h *harness) signup(t *testing.T, email, password string) SignupResult {
	t.Helper()
	res, err := h.svc.Signup(context.Background(), SignupInput{
		Email:     email,
		Password:  password,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Contact:   "+61 400 000 000",
	})
	require.NoError(t, err)
	return res
}

func (h *harness) verified(t *testing.T, email, password string) SignupResult {
	t.Helper()
	res := h.signup(t, email, password)
	_, err := h.svc.VerifyEmail(context.Background(), res.CorrelationKey, "123456")
	require.NoError(t, err)
	return res
}

func (h *harness) tempFiles(t *testing.T) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(h.tempDir)
	require.NoError(t, err)
	return entries
}
