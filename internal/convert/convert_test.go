// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/rapid-converter/internal/notify"
	"github.com/pdiddy/rapid-converter/internal/save"
	"github.com/pdiddy/rapid-converter/pkg/types"
)

var pdfBytes = []byte("%PDF-1.7\n%%EOF\n")

// steps records the order of side effects across saver and refresher.
type steps struct {
	mu  sync.Mutex
	log []string
}

func (s *steps) add(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, step)
}

func (s *steps) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.log...)
}

type stubSaver struct {
	steps *steps
	err   error
	reqs  []save.Request
	data  [][]byte
	mu    sync.Mutex
}

func (s *stubSaver) Save(_ context.Context, req save.Request, r io.Reader) (types.SaveRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return types.SaveRecord{}, err
	}
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	s.data = append(s.data, data)
	s.mu.Unlock()
	if s.err != nil {
		return types.SaveRecord{}, s.err
	}
	s.steps.add("save:" + req.Name)
	return types.SaveRecord{Name: req.Name, Path: "/out/" + req.Name, Bytes: int64(len(data))}, nil
}

type stubRefresher struct {
	steps *steps
	calls int32
}

func (s *stubRefresher) Refresh(context.Context) error {
	atomic.AddInt32(&s.calls, 1)
	s.steps.add("refresh")
	return nil
}

// capturedForm is what the mock service saw in one /convert request.
type capturedForm struct {
	fields      map[string][]string
	file        []byte
	filename    string
	contentType string
}

type convertServer struct {
	*httptest.Server
	calls int32
	mu    sync.Mutex
	forms []capturedForm
}

func newConvertServer(t *testing.T, status int) *convertServer {
	t.Helper()
	cs := &convertServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&cs.calls, 1)
		assert.Equal(t, "/convert", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)
		f.Close()

		cs.mu.Lock()
		cs.forms = append(cs.forms, capturedForm{
			fields:      r.MultipartForm.Value,
			file:        data,
			filename:    hdr.Filename,
			contentType: hdr.Header.Get("Content-Type"),
		})
		cs.mu.Unlock()

		if status != http.StatusOK {
			http.Error(w, "conversion error", status)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdfBytes)
	}))
	t.Cleanup(cs.Close)
	return cs
}

type fixture struct {
	orch     *Orchestrator
	saver    *stubSaver
	registry *stubRefresher
	rec      *notify.Recorder
	group    *errgroup.Group
	steps    *steps
}

func newFixture(t *testing.T, srv *httptest.Server, singleFlight bool) *fixture {
	t.Helper()
	st := &steps{}
	f := &fixture{
		saver:    &stubSaver{steps: st},
		registry: &stubRefresher{steps: st},
		rec:      &notify.Recorder{},
		group:    &errgroup.Group{},
		steps:    st,
	}
	f.orch = New(Config{
		BaseURL:      srv.URL,
		UserAgent:    "rapidconv/test",
		HTTP:         srv.Client(),
		Saver:        f.saver,
		Registry:     f.registry,
		Notifier:     f.rec,
		Background:   f.group,
		SingleFlight: singleFlight,
	})
	return f
}

func docx(name string) *types.SelectedFile {
	return &types.SelectedFile{Name: name, MediaType: types.DocxMediaType, Content: []byte("PK\x03\x04doc")}
}

func TestConvert_NoFileSelected(t *testing.T) {
	srv := newConvertServer(t, http.StatusOK)
	f := newFixture(t, srv.Server, false)

	_, err := f.orch.Convert(context.Background(), nil, types.EncryptionOption{Encrypt: true, Password: "x"})
	assert.ErrorIs(t, err, notify.ErrNoFileSelected)
	require.NoError(t, f.group.Wait())

	assert.Zero(t, atomic.LoadInt32(&srv.calls))
	assert.Equal(t, []notify.Kind{notify.NoFileSelected}, f.rec.Kinds())
	assert.Zero(t, atomic.LoadInt32(&f.registry.calls))
}

func TestConvert_EncryptedScenario(t *testing.T) {
	srv := newConvertServer(t, http.StatusOK)
	f := newFixture(t, srv.Server, false)

	rec, err := f.orch.Convert(context.Background(), docx("report.docx"), types.EncryptionOption{Encrypt: true, Password: "pw1"})
	require.NoError(t, err)
	require.NoError(t, f.group.Wait())

	assert.Equal(t, "encrypted_report.docx.pdf", rec.Name)
	assert.Equal(t, []string{"save:encrypted_report.docx.pdf", "refresh"}, f.steps.all())
	assert.Equal(t, pdfBytes, f.saver.data[0])
	assert.True(t, f.saver.reqs[0].Encrypted)
	assert.Equal(t, types.SourceConvert, f.saver.reqs[0].Source)
	assert.Equal(t, []notify.Kind{notify.ConversionSucceeded}, f.rec.Kinds())

	require.Len(t, srv.forms, 1)
	form := srv.forms[0]
	assert.Equal(t, []string{"true"}, form.fields["encryption"])
	assert.Equal(t, []string{"pw1"}, form.fields["password"])
	assert.Equal(t, "report.docx", form.filename)
	assert.Equal(t, types.DocxMediaType, form.contentType)
	assert.Equal(t, []byte("PK\x03\x04doc"), form.file)
}

func TestConvert_UnencryptedOmitsPassword(t *testing.T) {
	srv := newConvertServer(t, http.StatusOK)
	f := newFixture(t, srv.Server, false)

	rec, err := f.orch.Convert(context.Background(), docx("report.docx"), types.EncryptionOption{Encrypt: false, Password: "typed-but-unused"})
	require.NoError(t, err)
	require.NoError(t, f.group.Wait())

	assert.Equal(t, "report.docx.pdf", rec.Name)
	require.Len(t, srv.forms, 1)
	assert.Equal(t, []string{"false"}, srv.forms[0].fields["encryption"])
	_, hasPassword := srv.forms[0].fields["password"]
	assert.False(t, hasPassword)
}

func TestConvert_EmptyPasswordIsSubmitted(t *testing.T) {
	srv := newConvertServer(t, http.StatusOK)
	f := newFixture(t, srv.Server, false)

	_, err := f.orch.Convert(context.Background(), docx("a.docx"), types.EncryptionOption{Encrypt: true})
	require.NoError(t, err)
	require.NoError(t, f.group.Wait())

	assert.Equal(t, []string{""}, srv.forms[0].fields["password"])
}

func TestConvert_ServiceFailure(t *testing.T) {
	srv := newConvertServer(t, http.StatusInternalServerError)
	f := newFixture(t, srv.Server, false)

	file := docx("report.docx")
	opt := types.EncryptionOption{Encrypt: true, Password: "pw1"}
	_, err := f.orch.Convert(context.Background(), file, opt)
	require.NoError(t, f.group.Wait())

	assert.ErrorIs(t, err, notify.ErrConversionFailed)
	assert.Equal(t, []notify.Kind{notify.ConversionFailed}, f.rec.Kinds())
	assert.Empty(t, f.saver.reqs)
	assert.Zero(t, atomic.LoadInt32(&f.registry.calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&srv.calls))

	// Inputs are left as they were so the user can retry.
	assert.Equal(t, "report.docx", file.Name)
	assert.Equal(t, types.EncryptionOption{Encrypt: true, Password: "pw1"}, opt)
}

func TestConvert_TransportFailure(t *testing.T) {
	srv := newConvertServer(t, http.StatusOK)
	f := newFixture(t, srv.Server, false)
	srv.Close()

	_, err := f.orch.Convert(context.Background(), docx("a.docx"), types.EncryptionOption{})
	require.NoError(t, f.group.Wait())

	assert.ErrorIs(t, err, notify.ErrConversionFailed)
	assert.Equal(t, 1, f.rec.Count(notify.ConversionFailed))
	assert.Zero(t, atomic.LoadInt32(&f.registry.calls))
}

func TestConvert_SaveFailureSkipsRefresh(t *testing.T) {
	srv := newConvertServer(t, http.StatusOK)
	f := newFixture(t, srv.Server, false)
	f.saver.err = errors.New("disk full")

	_, err := f.orch.Convert(context.Background(), docx("a.docx"), types.EncryptionOption{})
	require.NoError(t, f.group.Wait())

	assert.ErrorIs(t, err, notify.ErrConversionFailed)
	assert.Contains(t, err.Error(), "disk full")
	assert.Zero(t, atomic.LoadInt32(&f.registry.calls))
}

func TestConvert_WithDiskSaver(t *testing.T) {
	srv := newConvertServer(t, http.StatusOK)
	dir := t.TempDir()
	reg := &stubRefresher{steps: &steps{}}
	group := &errgroup.Group{}
	orch := New(Config{
		BaseURL:    srv.URL,
		HTTP:       srv.Client(),
		Saver:      save.NewDisk(dir),
		Registry:   reg,
		Background: group,
	})

	rec, err := orch.Convert(context.Background(), docx("report.docx"), types.EncryptionOption{Encrypt: true, Password: "pw1"})
	require.NoError(t, err)
	require.NoError(t, group.Wait())

	assert.Equal(t, filepath.Join(dir, "encrypted_report.docx.pdf"), rec.Path)
	data, err := os.ReadFile(rec.Path)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, data)
	assert.Equal(t, int32(1), atomic.LoadInt32(&reg.calls))
}

// gatedServer blocks every /convert request until release is closed.
func gatedServer(t *testing.T, release <-chan struct{}, arrived chan<- struct{}) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		io.Copy(io.Discard, r.Body)
		arrived <- struct{}{}
		<-release
		w.Write(pdfBytes)
	}))
	t.Cleanup(ts.Close)
	return ts, &calls
}

func TestConvert_OverlappingCallsBothSubmit(t *testing.T) {
	release := make(chan struct{})
	arrived := make(chan struct{}, 2)
	ts, calls := gatedServer(t, release, arrived)
	f := newFixture(t, ts, false)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orch.Convert(context.Background(), docx("a.docx"), types.EncryptionOption{})
			assert.NoError(t, err)
		}()
	}
	for i := 0; i < 2; i++ {
		select {
		case <-arrived:
		case <-time.After(5 * time.Second):
			t.Fatal("requests did not arrive")
		}
	}
	close(release)
	wg.Wait()
	require.NoError(t, f.group.Wait())

	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.registry.calls))
	assert.Equal(t, 2, f.rec.Count(notify.ConversionSucceeded))
}

func TestConvert_SingleFlightSharesInFlightRequest(t *testing.T) {
	release := make(chan struct{})
	arrived := make(chan struct{}, 2)
	ts, calls := gatedServer(t, release, arrived)
	f := newFixture(t, ts, true)

	results := make(chan types.SaveRecord, 2)
	go func() {
		rec, err := f.orch.Convert(context.Background(), docx("a.docx"), types.EncryptionOption{})
		assert.NoError(t, err)
		results <- rec
	}()

	select {
	case <-arrived:
	case <-time.After(5 * time.Second):
		t.Fatal("first request did not arrive")
	}

	go func() {
		rec, err := f.orch.Convert(context.Background(), docx("a.docx"), types.EncryptionOption{})
		assert.NoError(t, err)
		results <- rec
	}()

	// Give the second caller time to join the flight before releasing.
	time.Sleep(50 * time.Millisecond)
	close(release)

	first, second := <-results, <-results
	require.NoError(t, f.group.Wait())

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.registry.calls))
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "report.docx.pdf", OutputName("report.docx", false))
	assert.Equal(t, "encrypted_report.docx.pdf", OutputName("report.docx", true))
}
