package cloudsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/rustyeddy/spreads/account"
	"github.com/rustyeddy/spreads/impexp"
	"github.com/rustyeddy/spreads/store"
)

// TokenStore persists the user's OAuth token.
type TokenStore interface {
	LoadToken(ctx context.Context) (*oauth2.Token, error)
	SaveToken(ctx context.Context, tok *oauth2.Token) error
}

// TokenSource returns a source seeded with the saved token that writes
// refreshed tokens back to ts.
func TokenSource(ctx context.Context, cfg *oauth2.Config, ts TokenStore) (oauth2.TokenSource, error) {
	tok, err := ts.LoadToken(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotSignedIn
	}
	if err != nil {
		return nil, err
	}
	return &savingSource{base: cfg.TokenSource(ctx, tok), store: ts, last: tok.AccessToken}, nil
}

type savingSource struct {
	mu    sync.Mutex
	base  oauth2.TokenSource
	store TokenStore
	last  string
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := s.store.SaveToken(context.Background(), tok); err != nil {
			return nil, fmt.Errorf("save refreshed token: %w", err)
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}

// MarkerStore is the part of the store the syncer needs.
type MarkerStore interface {
	DeviceID(ctx context.Context) (string, error)
	LoadSyncMarker(ctx context.Context) (store.SyncMarker, bool, error)
	SaveSyncMarker(ctx context.Context, m store.SyncMarker) error
}

// Syncer pushes and pulls the account through Drive and keeps the local
// sync marker current.
type Syncer struct {
	drive  *Drive
	marker MarkerStore
	now    func() time.Time
	log    *zap.Logger
}

func NewSyncer(d *Drive, m MarkerStore, log *zap.Logger) *Syncer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Syncer{drive: d, marker: m, now: time.Now, log: log.Named("cloudsync")}
}

// Push uploads rec, updating the known file when there is one.
func (s *Syncer) Push(ctx context.Context, rec account.Record) (store.SyncMarker, error) {
	dev, err := s.marker.DeviceID(ctx)
	if err != nil {
		return store.SyncMarker{}, err
	}
	prev, _, err := s.marker.LoadSyncMarker(ctx)
	if err != nil {
		s.log.Warn("ignoring unreadable sync marker", zap.Error(err))
	}

	now := s.now()
	doc := impexp.NewSyncDoc(rec, dev, now)
	data, err := impexp.Marshal(doc)
	if err != nil {
		return store.SyncMarker{}, err
	}

	fileID := prev.GoogleFileID
	if fileID == "" {
		fileID, err = s.drive.FindFile(ctx)
		if err != nil && !errors.Is(err, ErrNoRemoteFile) {
			return store.SyncMarker{}, err
		}
	}

	if fileID != "" {
		err = s.drive.Update(ctx, fileID, data)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == 404 {
			s.log.Info("remembered sync file is gone, creating a new one", zap.String("file_id", fileID))
			fileID = ""
		} else if err != nil {
			return store.SyncMarker{}, err
		}
	}
	if fileID == "" {
		if fileID, err = s.drive.Create(ctx, data); err != nil {
			return store.SyncMarker{}, err
		}
	}

	m := store.SyncMarker{SyncDoc: doc, GoogleFileID: fileID, LastGoogleSync: &now}
	if err := s.marker.SaveSyncMarker(ctx, m); err != nil {
		return store.SyncMarker{}, err
	}
	s.log.Info("pushed account", zap.String("file_id", fileID), zap.Int("trades", len(rec.Trades)))
	return m, nil
}

// Pull downloads and validates the remote sync document.
func (s *Syncer) Pull(ctx context.Context) (impexp.SyncDoc, error) {
	prev, _, err := s.marker.LoadSyncMarker(ctx)
	if err != nil {
		s.log.Warn("ignoring unreadable sync marker", zap.Error(err))
	}
	fileID := prev.GoogleFileID
	if fileID == "" {
		if fileID, err = s.drive.FindFile(ctx); err != nil {
			return impexp.SyncDoc{}, err
		}
	}

	data, err := s.drive.Download(ctx, fileID)
	if err != nil {
		return impexp.SyncDoc{}, err
	}
	doc, err := impexp.ParseSync(data)
	if err != nil {
		return impexp.SyncDoc{}, err
	}

	now := s.now()
	m := store.SyncMarker{SyncDoc: doc, GoogleFileID: fileID, LastGoogleSync: &now}
	if err := s.marker.SaveSyncMarker(ctx, m); err != nil {
		return impexp.SyncDoc{}, err
	}
	s.log.Info("pulled account", zap.String("file_id", fileID),
		zap.String("from_device", doc.DeviceID), zap.Time("last_sync", doc.LastSync))
	return doc, nil
}
