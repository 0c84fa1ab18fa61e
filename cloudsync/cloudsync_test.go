package cloudsync

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/rustyeddy/spreads/account"
	"github.com/rustyeddy/spreads/impexp"
	"github.com/rustyeddy/spreads/store"
)

// fakeDrive serves the four Drive calls from an in-memory file map.
type fakeDrive struct {
	mu      sync.Mutex
	files   map[string][]byte
	nextID  int
	calls   []string
	lastCT  string
	badAuth bool
}

func newFakeDrive(t *testing.T) (*fakeDrive, *httptest.Server) {
	t.Helper()
	f := &fakeDrive{files: map[string][]byte{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	if f.badAuth || r.Header.Get("Authorization") != "Bearer tok" {
		http.Error(w, `{"error":"invalid_token"}`, http.StatusUnauthorized)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/drive/v3/files" && r.URL.Query().Get("alt") == "":
		if r.URL.Query().Get("spaces") != "appDataFolder" {
			http.Error(w, "bad spaces", http.StatusBadRequest)
			return
		}
		if len(f.files) == 0 {
			io.WriteString(w, `{"files":[]}`)
			return
		}
		for id := range f.files {
			io.WriteString(w, `{"files":[{"id":"`+id+`"}]}`)
			return
		}

	case r.Method == http.MethodPost && r.URL.Path == "/upload/drive/v3/files":
		f.lastCT = r.Header.Get("Content-Type")
		_, params, err := mime.ParseMediaType(f.lastCT)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mr := multipart.NewReader(r.Body, params["boundary"])
		var parts [][]byte
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			b, _ := io.ReadAll(p)
			parts = append(parts, b)
		}
		if len(parts) != 2 || !strings.Contains(string(parts[0]), `"appDataFolder"`) {
			http.Error(w, "bad multipart body", http.StatusBadRequest)
			return
		}
		f.nextID++
		id := "file-" + string(rune('0'+f.nextID))
		f.files[id] = parts[1]
		io.WriteString(w, `{"id":"`+id+`"}`)

	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/upload/drive/v3/files/"):
		id := strings.TrimPrefix(r.URL.Path, "/upload/drive/v3/files/")
		if _, ok := f.files[id]; !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		b, _ := io.ReadAll(r.Body)
		f.files[id] = b
		io.WriteString(w, `{"id":"`+id+`"}`)

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/drive/v3/files/"):
		id := strings.TrimPrefix(r.URL.Path, "/drive/v3/files/")
		b, ok := f.files[id]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Write(b)

	default:
		http.Error(w, "unexpected "+r.Method+" "+r.URL.Path, http.StatusBadRequest)
	}
}

func newTestDrive(srv *httptest.Server) *Drive {
	return NewDrive(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}), Options{
		APIURL:     srv.URL + "/drive/v3",
		UploadURL:  srv.URL + "/upload/drive/v3",
		HTTPClient: srv.Client(),
	})
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "s.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRecord(t *testing.T, balance float64) account.Record {
	t.Helper()
	a, err := account.New(balance)
	require.NoError(t, err)
	return a.Record()
}

func TestDriveCreateFindDownload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fake, srv := newFakeDrive(t)
	d := newTestDrive(srv)

	_, err := d.FindFile(ctx)
	assert.ErrorIs(t, err, ErrNoRemoteFile)

	id, err := d.Create(ctx, []byte(`{"hello":1}`))
	require.NoError(t, err)
	assert.Equal(t, "file-1", id)
	assert.True(t, strings.HasPrefix(fake.lastCT, "multipart/related; boundary="))

	found, err := d.FindFile(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, found)

	require.NoError(t, d.Update(ctx, id, []byte(`{"hello":2}`)))
	got, err := d.Download(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hello":2}`, string(got))

	_, err = d.Download(ctx, "nope")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestDriveUnauthorized(t *testing.T) {
	t.Parallel()
	fake, srv := newFakeDrive(t)
	fake.badAuth = true

	_, err := newTestDrive(srv).FindFile(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSyncerPushPull(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fake, srv := newFakeDrive(t)
	st := newTestStore(t)

	s := NewSyncer(newTestDrive(srv), st, nil)
	s.now = func() time.Time { return time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC) }

	m, err := s.Push(ctx, testRecord(t, 3000))
	require.NoError(t, err)
	assert.Equal(t, "file-1", m.GoogleFileID)
	require.NotNil(t, m.LastGoogleSync)

	// Second push updates the remembered file.
	_, err = s.Push(ctx, testRecord(t, 4000))
	require.NoError(t, err)
	assert.Len(t, fake.files, 1)

	doc, err := s.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4000.0, doc.AccountData.Balance)
	dev, err := st.DeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, dev, doc.DeviceID)

	saved, ok, err := st.LoadSyncMarker(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "file-1", saved.GoogleFileID)
}

func TestSyncerPushRecreatesMissingFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fake, srv := newFakeDrive(t)
	st := newTestStore(t)

	rec := testRecord(t, 3000)
	require.NoError(t, st.SaveSyncMarker(ctx, store.SyncMarker{
		SyncDoc:      impexp.NewSyncDoc(rec, "device_old", time.Now()),
		GoogleFileID: "deleted",
	}))

	m, err := NewSyncer(newTestDrive(srv), st, nil).Push(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, "file-1", m.GoogleFileID)
	assert.Contains(t, fake.calls, "PATCH /upload/drive/v3/files/deleted")
}

func TestSyncerPullWithoutRemote(t *testing.T) {
	t.Parallel()
	_, srv := newFakeDrive(t)

	_, err := NewSyncer(newTestDrive(srv), newTestStore(t), nil).Pull(context.Background())
	assert.ErrorIs(t, err, ErrNoRemoteFile)
}

func TestTokenSource(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := newTestStore(t)
	cfg := OAuthConfig("id", "secret", "urn:ietf:wg:oauth:2.0:oob")

	_, err := TokenSource(ctx, cfg, st)
	assert.ErrorIs(t, err, ErrNotSignedIn)

	require.NoError(t, st.SaveToken(ctx, &oauth2.Token{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)}))
	src, err := TokenSource(ctx, cfg, st)
	require.NoError(t, err)
	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok", tok.AccessToken)
	assert.Equal(t, []string{ScopeDriveFile}, cfg.Scopes)
}
