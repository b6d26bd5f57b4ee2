package phase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/projecteru2/core/log"
	coretypes "github.com/projecteru2/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecteru2/vasup/prompt"
	"github.com/projecteru2/vasup/state"
	"github.com/projecteru2/vasup/types"
)

func TestMain(m *testing.M) {
	_ = log.SetupLog(context.TODO(), &coretypes.ServerLogConfig{Level: "info"}, "")
	os.Exit(m.Run())
}

// recorder captures the order of side effects so ordering invariants
// (state persisted strictly before reboot) can be asserted.
type recorder struct {
	events []string
}

func (r *recorder) add(e string) { r.events = append(r.events, e) }

type recordingStore struct {
	mem     *state.Memory
	rec     *recorder
	saveErr error
}

func (s *recordingStore) Load(ctx context.Context) types.StateRecord {
	return s.mem.Load(ctx)
}

func (s *recordingStore) Save(ctx context.Context, r types.StateRecord) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.rec.add("save:" + string(r.Phase))
	return s.mem.Save(ctx, r)
}

type fakeSteps struct {
	rec        *recorder
	baseErr    error
	setupCodes []int
	setupErr   error
}

func (f *fakeSteps) BaseInstall(context.Context) error {
	f.rec.add("base")
	return f.baseErr
}

func (f *fakeSteps) Setup(context.Context) (int, error) {
	f.rec.add("setup")
	if f.setupErr != nil {
		return 0, f.setupErr
	}
	code := f.setupCodes[0]
	f.setupCodes = f.setupCodes[1:]
	return code, nil
}

func (f *fakeSteps) FeedSync(context.Context) { f.rec.add("feeds") }
func (f *fakeSteps) Summary(context.Context)  { f.rec.add("summary") }

type fakeClassifier struct{ outcome types.Outcome }

func (f fakeClassifier) Classify(string) types.Outcome { return f.outcome }

type fakeTranscript struct {
	text    string
	headers []string
}

func (f *fakeTranscript) Contents() (string, error) { return f.text, nil }

func (f *fakeTranscript) Printf(format string, args ...any) {
	f.headers = append(f.headers, fmt.Sprintf(format, args...))
}

type fakeDisabler struct{ rec *recorder }

func (f *fakeDisabler) Disable(context.Context) error {
	f.rec.add("disable")
	return nil
}

type fakeRebooter struct {
	rec *recorder
	err error
}

func (f *fakeRebooter) Reboot(context.Context) error {
	f.rec.add("reboot")
	return f.err
}

type fixture struct {
	ctrl  *Controller
	rec   *recorder
	store *recordingStore
	steps *fakeSteps
	tr    *fakeTranscript
}

func setupControllerTest(t *testing.T, from types.Phase) *fixture {
	t.Helper()
	rec := &recorder{}
	store := &recordingStore{mem: state.NewMemory(), rec: rec}
	if from != types.PhaseStart {
		require.NoError(t, store.mem.Save(context.Background(), types.StateRecord{Phase: from, RunID: "run-t"}))
	}
	steps := &fakeSteps{rec: rec}
	tr := &fakeTranscript{}
	return &fixture{
		ctrl: &Controller{
			Store:      store,
			Steps:      steps,
			Classifier: fakeClassifier{outcome: types.OutcomeOther},
			Transcript: tr,
			Disabler:   &fakeDisabler{rec: rec},
			Confirm:    prompt.Fixed(true),
			Reboot:     &fakeRebooter{rec: rec},
		},
		rec:   rec,
		store: store,
		steps: steps,
		tr:    tr,
	}
}

func TestRun_FreshInstallHappyPath(t *testing.T) {
	t.Parallel()

	f := setupControllerTest(t, types.PhaseStart)
	f.steps.setupCodes = []int{0}

	require.NoError(t, f.ctrl.Run(context.Background()))
	assert.Equal(t, []string{
		"base", "save:setup",
		"setup", "save:feeds",
		"feeds", "save:done", "summary",
	}, f.rec.events)
	assert.Equal(t, types.PhaseDone, f.store.mem.Load(context.Background()).Phase)
}

func TestRun_BaseInstallFailureKeepsStartPhase(t *testing.T) {
	t.Parallel()

	f := setupControllerTest(t, types.PhaseStart)
	f.steps.baseErr = errors.New("dnf exploded")

	err := f.ctrl.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, types.PhaseStart, f.store.mem.Load(context.Background()).Phase)
}

func TestRun_SELinuxFailureConfirmedPersistsBeforeReboot(t *testing.T) {
	t.Parallel()

	f := setupControllerTest(t, types.PhaseSetup)
	f.steps.setupCodes = []int{1}
	f.ctrl.Classifier = fakeClassifier{outcome: types.OutcomeSELinuxMustBeDisabled}

	require.NoError(t, f.ctrl.Run(context.Background()))

	assert.Equal(t, []string{"setup", "disable", "save:postreboot_setup", "reboot"}, f.rec.events)
	assert.Equal(t, types.PhasePostRebootSetup, f.store.mem.Load(context.Background()).Phase)
}

func TestRun_SELinuxFailureDeclined(t *testing.T) {
	t.Parallel()

	f := setupControllerTest(t, types.PhaseSetup)
	f.steps.setupCodes = []int{1}
	f.ctrl.Classifier = fakeClassifier{outcome: types.OutcomeSELinuxMustBeDisabled}
	f.ctrl.Confirm = prompt.Fixed(false)

	err := f.ctrl.Run(context.Background())
	require.ErrorIs(t, err, ErrRemediationDeclined)
	assert.NotContains(t, f.rec.events, "disable")
	assert.NotContains(t, f.rec.events, "reboot")
	assert.Equal(t, types.PhaseSetup, f.store.mem.Load(context.Background()).Phase)
}

func TestRun_UnclassifiedSetupFailurePropagatesExitCode(t *testing.T) {
	t.Parallel()

	f := setupControllerTest(t, types.PhaseSetup)
	f.steps.setupCodes = []int{42}

	err := f.ctrl.Run(context.Background())
	var ece *ExitCodeError
	require.ErrorAs(t, err, &ece)
	assert.Equal(t, 42, ece.Code)
	assert.Equal(t, types.PhaseSetup, f.store.mem.Load(context.Background()).Phase)
}

func TestRun_SaveFailureSuppressesReboot(t *testing.T) {
	t.Parallel()

	f := setupControllerTest(t, types.PhaseSetup)
	f.steps.setupCodes = []int{1}
	f.ctrl.Classifier = fakeClassifier{outcome: types.OutcomeSELinuxMustBeDisabled}
	f.store.saveErr = errors.New("disk full")

	err := f.ctrl.Run(context.Background())
	require.Error(t, err)
	assert.NotContains(t, f.rec.events, "reboot")
}

func TestRun_PostRebootSuccessAdvancesToDone(t *testing.T) {
	t.Parallel()

	f := setupControllerTest(t, types.PhasePostRebootSetup)
	f.steps.setupCodes = []int{0}

	require.NoError(t, f.ctrl.Run(context.Background()))
	assert.Equal(t, []string{"setup", "save:feeds", "feeds", "save:done", "summary"}, f.rec.events)
	assert.Equal(t, types.PhaseDone, f.store.mem.Load(context.Background()).Phase)
}

func TestRun_PostRebootFailureHasNoRemediationBranch(t *testing.T) {
	t.Parallel()

	f := setupControllerTest(t, types.PhasePostRebootSetup)
	f.steps.setupCodes = []int{7}
	// Even a classified-looking transcript must not loop back into the
	// disable path a second time.
	f.ctrl.Classifier = fakeClassifier{outcome: types.OutcomeSELinuxMustBeDisabled}

	err := f.ctrl.Run(context.Background())
	var ece *ExitCodeError
	require.ErrorAs(t, err, &ece)
	assert.Equal(t, 7, ece.Code)
	assert.NotContains(t, f.rec.events, "disable")
	assert.NotContains(t, f.rec.events, "reboot")
}

func TestRun_DoneIsIdempotent(t *testing.T) {
	t.Parallel()

	f := setupControllerTest(t, types.PhaseDone)

	require.NoError(t, f.ctrl.Run(context.Background()))
	assert.Empty(t, f.rec.events)
}

func TestRun_UnknownPhaseErrorsOut(t *testing.T) {
	t.Parallel()

	f := setupControllerTest(t, types.PhaseStart)
	// Memory does not validate, so a record can carry a phase FileStore
	// would have rejected. Run must fail instead of spinning on it.
	require.NoError(t, f.store.mem.Save(context.Background(), types.StateRecord{Phase: "warp", RunID: "run-t"}))

	err := f.ctrl.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"warp"`)
	assert.Empty(t, f.rec.events)
}

func TestRun_TranscriptHeaderCarriesRunID(t *testing.T) {
	t.Parallel()

	f := setupControllerTest(t, types.PhaseFeeds)

	require.NoError(t, f.ctrl.Run(context.Background()))
	require.Len(t, f.tr.headers, 1)
	assert.Contains(t, f.tr.headers[0], "run run-t")
	assert.Contains(t, f.tr.headers[0], string(types.PhaseFeeds))
}
