// Package cloudsync keeps a copy of the account's sync document in the
// user's Google Drive application data folder.
package cloudsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/rustyeddy/spreads/impexp"
)

const (
	ScopeDriveFile   = "https://www.googleapis.com/auth/drive.file"
	DefaultAPIURL    = "https://www.googleapis.com/drive/v3"
	DefaultUploadURL = "https://www.googleapis.com/upload/drive/v3"

	appDataFolder = "appDataFolder"
)

var (
	ErrNotSignedIn  = errors.New("not signed in to Google Drive")
	ErrUnauthorized = errors.New("google drive rejected the token")
	ErrNoRemoteFile = errors.New("no sync file in Google Drive")
)

// APIError is a non-2xx Drive response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("drive api: status %d: %s", e.Status, e.Body)
}

// OAuthConfig returns the Google OAuth2 config for Drive file access.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{ScopeDriveFile},
		Endpoint:     google.Endpoint,
	}
}

type Options struct {
	APIURL     string
	UploadURL  string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Drive is a minimal Drive v3 client for the single sync file.
type Drive struct {
	hc     *http.Client
	api    string
	upload string
	log    *zap.Logger
}

func NewDrive(src oauth2.TokenSource, opts Options) *Drive {
	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: 30 * time.Second}
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	hc := oauth2.NewClient(ctx, src)
	hc.Timeout = base.Timeout

	d := &Drive{hc: hc, api: opts.APIURL, upload: opts.UploadURL, log: opts.Logger}
	if d.api == "" {
		d.api = DefaultAPIURL
	}
	if d.upload == "" {
		d.upload = DefaultUploadURL
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}
	d.log = d.log.Named("drive")
	return d
}

type fileRef struct {
	ID string `json:"id"`
}

// FindFile returns the sync file's id, or ErrNoRemoteFile.
func (d *Drive) FindFile(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("name='%s' and trashed=false", impexp.SyncFileName))
	q.Set("spaces", appDataFolder)
	q.Set("fields", "files(id)")

	var out struct {
		Files []fileRef `json:"files"`
	}
	if err := d.do(ctx, http.MethodGet, d.api+"/files?"+q.Encode(), "", nil, &out); err != nil {
		return "", fmt.Errorf("find sync file: %w", err)
	}
	if len(out.Files) == 0 {
		return "", ErrNoRemoteFile
	}
	return out.Files[0].ID, nil
}

// Create uploads data as a new sync file and returns its id.
func (d *Drive) Create(ctx context.Context, data []byte) (string, error) {
	meta, err := json.Marshal(map[string]any{
		"name":    impexp.SyncFileName,
		"parents": []string{appDataFolder},
	})
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, part := range []struct {
		ctype string
		data  []byte
	}{
		{"application/json; charset=UTF-8", meta},
		{"application/json", data},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {part.ctype}})
		if err != nil {
			return "", err
		}
		if _, err := w.Write(part.data); err != nil {
			return "", err
		}
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var ref fileRef
	ctype := "multipart/related; boundary=" + mw.Boundary()
	if err := d.do(ctx, http.MethodPost, d.upload+"/files?uploadType=multipart", ctype, &body, &ref); err != nil {
		return "", fmt.Errorf("create sync file: %w", err)
	}
	d.log.Info("sync file created", zap.String("file_id", ref.ID))
	return ref.ID, nil
}

// Update replaces the content of an existing file.
func (d *Drive) Update(ctx context.Context, fileID string, data []byte) error {
	u := d.upload + "/files/" + url.PathEscape(fileID) + "?uploadType=media"
	if err := d.do(ctx, http.MethodPatch, u, "application/json", bytes.NewReader(data), nil); err != nil {
		return fmt.Errorf("update sync file %s: %w", fileID, err)
	}
	return nil
}

// Download returns the raw content of a file.
func (d *Drive) Download(ctx context.Context, fileID string) ([]byte, error) {
	var raw []byte
	u := d.api + "/files/" + url.PathEscape(fileID) + "?alt=media"
	if err := d.do(ctx, http.MethodGet, u, "", nil, &raw); err != nil {
		return nil, fmt.Errorf("download sync file %s: %w", fileID, err)
	}
	return raw, nil
}

// do sends a request. out may be nil, a *[]byte for the raw body, or a
// value to decode JSON into.
func (d *Drive) do(ctx context.Context, method, u, ctype string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if ctype != "" {
		req.Header.Set("Content-Type", ctype)
	}

	resp, err := d.hc.Do(req)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		d.log.Warn("drive request failed",
			zap.String("method", method), zap.Int("status", resp.StatusCode))
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}

	switch v := out.(type) {
	case nil:
		return nil
	case *[]byte:
		*v = data
		return nil
	default:
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode drive response: %w", err)
		}
		return nil
	}
}
