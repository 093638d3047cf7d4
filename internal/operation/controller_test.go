package operation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/Ausmalbar/internal/client"
	"github.com/Rorical/Ausmalbar/internal/models"
	"github.com/Rorical/Ausmalbar/internal/page"
	"github.com/Rorical/Ausmalbar/internal/progress"
)

const confirmHTML = `<html><body>
<form id="confirm-form" method="post" action="">
  <input type="hidden" name="csrfmiddlewaretoken" value="tok-123">
  <input type="hidden" name="action" id="form_action" value="">
  <input type="hidden" name="prompt" id="hidden_prompt" value="">
  <input type="hidden" name="system_prompt" id="system_prompt_input" value="">
  <div class="preview-container"></div>
  <div class="preview-fields">
    <div class="preview-field"><span class="value">Cat</span></div>
    <div class="preview-field"><span class="value">A cat.</span></div>
    <div class="preview-field"><span class="value">Katze</span></div>
    <div class="preview-field"><span class="value">Eine Katze.</span></div>
  </div>
  <textarea id="prompt"> a cat </textarea>
  <select id="system_prompt_select"><option value="1">Simple</option><option value="2" selected>Detailed</option></select>
</form></body></html>`

const generateHTML = `<html><body>
<form id="coloringpage_form" method="post" action="/admin/generate/">
  <input type="hidden" name="csrfmiddlewaretoken" value="tok-gen">
  <textarea name="prompt" id="prompt">a dragon</textarea>
  <select name="system_prompt" id="system_prompt_select"><option value="3" selected>Mandala</option></select>
</form></body></html>`

var testTiming = Timing{
	Tick:          time.Millisecond,
	ErrorHide:     20 * time.Millisecond,
	SuccessHide:   10 * time.Millisecond,
	RedirectDelay: 5 * time.Millisecond,
}

type submission struct {
	target string
	values url.Values
}

type fakeNavigator struct {
	mu        sync.Mutex
	navigated []string
	submitted []submission
	err       error
}

func (n *fakeNavigator) Navigate(ctx context.Context, target string) (*page.Document, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.navigated = append(n.navigated, target)
	if n.err != nil {
		return nil, n.err
	}
	return page.ParseString("http://admin.test"+target, "<p>next</p>")
}

func (n *fakeNavigator) SubmitForm(ctx context.Context, target string, values url.Values) (*page.Document, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submitted = append(n.submitted, submission{target: target, values: values})
	if n.err != nil {
		return nil, n.err
	}
	return page.ParseString(target, "<p>list</p>")
}

type fakeConfirmer struct {
	answer bool
	asked  []string
}

func (f *fakeConfirmer) Confirm(ctx context.Context, question string) (bool, error) {
	f.asked = append(f.asked, question)
	return f.answer, nil
}

type harness struct {
	ctrl     *Controller
	reporter *progress.Reporter
	rec      *progress.Recorder
	nav      *fakeNavigator
	conf     *fakeConfirmer
	server   *httptest.Server
	session  *client.Session
}

func newHarness(t *testing.T, handler http.HandlerFunc) *harness {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	session, err := client.NewSession(client.Options{BaseURL: server.URL, HTTPClient: server.Client()})
	require.NoError(t, err)

	rec := &progress.Recorder{}
	reporter := progress.NewReporter(rec)
	nav := &fakeNavigator{}
	conf := &fakeConfirmer{}

	ctrl := New(Options{
		Reporter:  reporter,
		Transport: session,
		Navigator: nav,
		Confirmer: conf,
		Timing:    testTiming,
	})
	return &harness{ctrl: ctrl, reporter: reporter, rec: rec, nav: nav, conf: conf, server: server, session: session}
}

func (h *harness) doc(t *testing.T, path, body string) *page.Document {
	t.Helper()
	doc, err := page.ParseString(h.server.URL+path, body)
	require.NoError(t, err)
	return doc
}

// errorMessages lists every error render in order.
func (h *harness) errorMessages() []string {
	var out []string
	for _, s := range h.rec.States() {
		if s.Phase == models.PhaseError {
			out = append(out, s.Message)
		}
	}
	return out
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}
}

func TestRegenerate_PatchReconciliation(t *testing.T) {
	var got *http.Request
	var form url.Values
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		got, form = r, r.PostForm
		fmt.Fprint(w, `{"success":true,"thumb_data":"X","title_en":"T"}`)
	})
	doc := h.doc(t, "/admin/confirm/", confirmHTML)

	err := h.ctrl.Perform(context.Background(), models.Regenerate, doc)
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/admin/confirm/", got.URL.Path)
	assert.Equal(t, "XMLHttpRequest", got.Header.Get("X-Requested-With"))
	assert.Equal(t, "tok-123", got.Header.Get("X-CSRFToken"))
	assert.Equal(t, "regenerate", got.Header.Get("X-Action"))
	assert.Equal(t, "regenerate", form.Get("action"))
	assert.Equal(t, "tok-123", form.Get("csrfmiddlewaretoken"))
	assert.Equal(t, "a cat", form.Get("prompt"))
	assert.Equal(t, "2", form.Get("system_prompt"))

	assert.Equal(t, "X", doc.Thumbnail())
	assert.Equal(t, "T", doc.SlotText(page.SlotTitleEN))
	assert.Equal(t, "Katze", doc.SlotText(page.SlotTitleDE))
	assert.Equal(t, "A cat.", doc.SlotText(page.SlotDescriptionEN))
	assert.Equal(t, "Eine Katze.", doc.SlotText(page.SlotDescriptionDE))

	states := h.rec.States()
	require.NotEmpty(t, states)
	assert.Equal(t, models.ProgressState{Percent: 0, Message: "Regenerating image...", Phase: models.PhaseInfo, Visible: true}, states[0])
	assert.Contains(t, states, models.ProgressState{Percent: 100, Message: msgRegenerated, Phase: models.PhaseInfo, Visible: true})

	assert.Eventually(t, func() bool { return !h.reporter.State().Visible }, time.Second, 5*time.Millisecond)
	assert.Equal(t, models.Idle, h.ctrl.State())
	assert.Empty(t, h.nav.navigated)
}

func TestRegenerate_SuccessWithoutFieldsIsInvalid(t *testing.T) {
	h := newHarness(t, jsonHandler(http.StatusOK, `{"success":true}`))
	doc := h.doc(t, "/admin/confirm/", confirmHTML)

	err := h.ctrl.Perform(context.Background(), models.Regenerate, doc)

	var opErr *Error
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, models.ProtocolViolation, opErr.Kind)
	assert.Equal(t, []string{"Invalid response from server"}, h.errorMessages())
	assert.Equal(t, "Cat", doc.SlotText(page.SlotTitleEN))

	assert.Eventually(t, func() bool { return h.reporter.State().Phase == models.PhaseHidden }, time.Second, 5*time.Millisecond)
}

func TestRegenerate_RedirectNavigatesWithoutPatching(t *testing.T) {
	h := newHarness(t, jsonHandler(http.StatusOK, `{"redirect":"/pages/42/"}`))
	doc := h.doc(t, "/admin/confirm/", confirmHTML)

	err := h.ctrl.Perform(context.Background(), models.Regenerate, doc)
	require.NoError(t, err)

	assert.Equal(t, []string{"/pages/42/"}, h.nav.navigated)
	assert.Equal(t, "", doc.Thumbnail())
	assert.Equal(t, "Cat", doc.SlotText(page.SlotTitleEN))
	assert.Equal(t, " a cat ", doc.Prompt())
	for _, s := range h.rec.States() {
		assert.NotEqual(t, 100, s.Percent, "redirect does not render completion")
	}
}

func TestRegenerate_TransportFailure(t *testing.T) {
	h := newHarness(t, jsonHandler(http.StatusOK, `{}`))
	doc := h.doc(t, "/admin/confirm/", confirmHTML)
	h.server.Close()

	err := h.ctrl.Perform(context.Background(), models.Regenerate, doc)

	var opErr *Error
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, models.TransportFailure, opErr.Kind)
	assert.Equal(t, []string{msgRegenerateError}, h.errorMessages())
}

func TestSubmit_ServerReportedError(t *testing.T) {
	h := newHarness(t, jsonHandler(http.StatusTooManyRequests, `{"error":"quota exceeded"}`))
	doc := h.doc(t, "/admin/generate/", generateHTML)

	err := h.ctrl.Perform(context.Background(), models.Submit, doc)

	var opErr *Error
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, models.ServerReportedFailure, opErr.Kind)
	assert.Equal(t, []string{"quota exceeded"}, h.errorMessages())
}

func TestSubmit_UnparseableErrorBody(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "<html>Server Error</html>")
	})
	doc := h.doc(t, "/admin/generate/", generateHTML)

	err := h.ctrl.Perform(context.Background(), models.Submit, doc)

	require.Error(t, err)
	assert.Equal(t, []string{"Network response was not ok"}, h.errorMessages())
}

func TestSubmit_EmptyErrorBody(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	doc := h.doc(t, "/admin/generate/", generateHTML)

	require.Error(t, h.ctrl.Perform(context.Background(), models.Submit, doc))
	assert.Equal(t, []string{"Network response was not ok"}, h.errorMessages())
}

func TestSubmit_ErrorFieldDespite2xx(t *testing.T) {
	h := newHarness(t, jsonHandler(http.StatusOK, `{"error":"Please enter a prompt"}`))
	doc := h.doc(t, "/admin/generate/", generateHTML)

	require.Error(t, h.ctrl.Perform(context.Background(), models.Submit, doc))
	assert.Equal(t, []string{"Please enter a prompt"}, h.errorMessages())
}

func TestSubmit_RedirectAfterCompletion(t *testing.T) {
	var path string
	var form url.Values
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		path, form = r.URL.Path, r.PostForm
		fmt.Fprint(w, `{"redirect":"/admin/confirm/"}`)
	})
	doc := h.doc(t, "/admin/somewhere/", generateHTML)

	require.NoError(t, h.ctrl.Perform(context.Background(), models.Submit, doc))

	assert.Equal(t, "/admin/generate/", path, "submit posts to the declared form action")
	assert.Equal(t, "a dragon", form.Get("prompt"))
	assert.Equal(t, "3", form.Get("system_prompt"))
	assert.Equal(t, []string{"/admin/confirm/"}, h.nav.navigated)

	var sawRedirecting bool
	for _, s := range h.rec.States() {
		if s.Percent == 100 && s.Message == msgRedirecting {
			sawRedirecting = true
		}
	}
	assert.True(t, sawRedirecting)
	assert.False(t, h.reporter.State().Visible)
}

func TestSubmit_OKWithoutRedirectIsInvalid(t *testing.T) {
	h := newHarness(t, jsonHandler(http.StatusOK, `{"ok":true}`))
	doc := h.doc(t, "/admin/generate/", generateHTML)

	err := h.ctrl.Perform(context.Background(), models.Submit, doc)

	var opErr *Error
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, models.ProtocolViolation, opErr.Kind)
}

func TestSimulation_NeverReachesCeilingBeforeSettlement(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(80 * time.Millisecond)
		fmt.Fprint(w, `{"success":true,"title_en":"T"}`)
	})
	doc := h.doc(t, "/admin/confirm/", confirmHTML)

	require.NoError(t, h.ctrl.Perform(context.Background(), models.Regenerate, doc))

	states := h.rec.States()
	terminal := -1
	for i, s := range states {
		if s.Percent == 100 {
			terminal = i
			break
		}
	}
	require.NotEqual(t, -1, terminal, "settlement renders 100")

	last := 0
	ticks := 0
	for _, s := range states[:terminal] {
		require.Equal(t, models.PhaseInfo, s.Phase)
		assert.Less(t, s.Percent, 90)
		assert.GreaterOrEqual(t, s.Percent, last)
		last = s.Percent
		if s.Percent > 0 {
			ticks++
			assert.Equal(t, "Regenerating image... (This may take a minute)", s.Message)
		}
	}
	assert.Greater(t, ticks, 0, "the simulation ticked while the request was pending")

	for _, s := range states[terminal+1:] {
		assert.NotEqual(t, models.PhaseInfo, s.Phase, "no tick after the terminal render")
	}
}

func TestReject_DeclinedDoesNotSubmit(t *testing.T) {
	h := newHarness(t, jsonHandler(http.StatusOK, `{}`))
	h.conf.answer = false
	doc := h.doc(t, "/admin/confirm/", confirmHTML)

	err := h.ctrl.Perform(context.Background(), models.Reject, doc)

	assert.ErrorIs(t, err, ErrAborted)
	assert.Len(t, h.conf.asked, 1)
	assert.Empty(t, h.nav.submitted)
	assert.False(t, h.reporter.State().Visible)
	for _, s := range h.rec.States() {
		assert.NotEqual(t, models.PhaseError, s.Phase)
	}
	assert.Equal(t, models.Idle, h.ctrl.State())
}

func TestReject_AcceptedSubmits(t *testing.T) {
	h := newHarness(t, jsonHandler(http.StatusOK, `{}`))
	h.conf.answer = true
	doc := h.doc(t, "/admin/confirm/", confirmHTML)

	require.NoError(t, h.ctrl.Perform(context.Background(), models.Reject, doc))

	require.Len(t, h.nav.submitted, 1)
	sub := h.nav.submitted[0]
	assert.Equal(t, h.server.URL+"/admin/confirm/", sub.target)
	assert.Equal(t, "reject", sub.values.Get("action"))
	assert.False(t, h.reporter.State().Visible)
}

func TestConfirm_SnapshotsFieldsAndSubmits(t *testing.T) {
	h := newHarness(t, jsonHandler(http.StatusOK, `{}`))
	doc := h.doc(t, "/admin/confirm/", confirmHTML)
	doc.SetPrompt("  a dog ")
	doc.SetSystemPrompt("1")

	require.NoError(t, h.ctrl.Perform(context.Background(), models.Confirm, doc))

	assert.Empty(t, h.conf.asked, "confirm does not ask")
	require.Len(t, h.nav.submitted, 1)
	values := h.nav.submitted[0].values
	assert.Equal(t, "confirm", values.Get("action"))
	assert.Equal(t, "a dog", values.Get("prompt"))
	assert.Equal(t, "1", values.Get("system_prompt"))
	assert.Equal(t, "Saving coloring page...", h.rec.States()[0].Message)
}

func TestConfirm_SubmissionFailure(t *testing.T) {
	h := newHarness(t, jsonHandler(http.StatusOK, `{}`))
	h.nav.err = errors.New("connection reset")
	doc := h.doc(t, "/admin/confirm/", confirmHTML)

	err := h.ctrl.Perform(context.Background(), models.Confirm, doc)

	var opErr *Error
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, models.TransportFailure, opErr.Kind)
	assert.Equal(t, []string{msgSubmitFormError}, h.errorMessages())
}

func TestPerform_RejectsOverlap(t *testing.T) {
	release := make(chan struct{})
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		fmt.Fprint(w, `{"success":true,"title_en":"T"}`)
	})
	doc := h.doc(t, "/admin/confirm/", confirmHTML)

	done := make(chan error, 1)
	go func() { done <- h.ctrl.Perform(context.Background(), models.Regenerate, doc) }()

	require.Eventually(t, func() bool { return h.ctrl.State() == models.InFlight }, time.Second, time.Millisecond)
	before := len(h.rec.States())

	err := h.ctrl.Perform(context.Background(), models.Confirm, doc)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Empty(t, h.nav.submitted)

	close(release)
	require.NoError(t, <-done)
	assert.GreaterOrEqual(t, len(h.rec.States()), before)
}

func TestPerform_StaleErrorHideDoesNotHideNextOperation(t *testing.T) {
	var calls int
	var mu sync.Mutex
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		time.Sleep(60 * time.Millisecond)
		fmt.Fprint(w, `{"success":true,"title_en":"T"}`)
	})
	doc := h.doc(t, "/admin/confirm/", confirmHTML)

	require.Error(t, h.ctrl.Perform(context.Background(), models.Regenerate, doc))

	done := make(chan error, 1)
	go func() { done <- h.ctrl.Perform(context.Background(), models.Regenerate, doc) }()

	assert.Never(t, func() bool {
		return h.ctrl.State() == models.InFlight && !h.reporter.State().Visible
	}, 40*time.Millisecond, 2*time.Millisecond)
	require.NoError(t, <-done)
}

func TestPerform_NoPage(t *testing.T) {
	h := newHarness(t, jsonHandler(http.StatusOK, `{}`))
	assert.ErrorIs(t, h.ctrl.Perform(context.Background(), models.Submit, nil), ErrNoPage)
}

func TestDefaultTiming(t *testing.T) {
	tm := DefaultTiming(0)
	assert.Equal(t, 2*time.Second, tm.Tick)
	assert.Equal(t, 5*time.Second, tm.ErrorHide)
	assert.Equal(t, time.Second, tm.SuccessHide)
	assert.Equal(t, time.Second, tm.RedirectDelay)
}
