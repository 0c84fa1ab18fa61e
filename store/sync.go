package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/rustyeddy/spreads/impexp"
)

// SyncMarker is the last sync document written or read on this device,
// plus the cloud copy's file id when Drive sync is in use.
type SyncMarker struct {
	impexp.SyncDoc
	GoogleFileID   string     `json:"googleFileId,omitempty"`
	LastGoogleSync *time.Time `json:"lastGoogleSync,omitempty"`
}

func (s *Store) SaveSyncMarker(ctx context.Context, m SyncMarker) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode sync marker: %w", err)
	}
	return s.Set(ctx, KeySync, data)
}

// LoadSyncMarker returns the marker; ok is false when none is saved.
func (s *Store) LoadSyncMarker(ctx context.Context) (m SyncMarker, ok bool, err error) {
	data, err := s.Get(ctx, KeySync)
	if errors.Is(err, ErrNotFound) {
		return SyncMarker{}, false, nil
	}
	if err != nil {
		return SyncMarker{}, false, err
	}

	doc, err := impexp.ParseSync(data)
	if err != nil {
		return SyncMarker{}, false, fmt.Errorf("load sync marker: %w", err)
	}
	var extra struct {
		GoogleFileID   string     `json:"googleFileId"`
		LastGoogleSync *time.Time `json:"lastGoogleSync"`
	}
	if err := json.Unmarshal(data, &extra); err != nil {
		return SyncMarker{}, false, fmt.Errorf("load sync marker: %w", err)
	}
	return SyncMarker{SyncDoc: doc, GoogleFileID: extra.GoogleFileID, LastGoogleSync: extra.LastGoogleSync}, true, nil
}

type SyncStatus struct {
	Configured     bool       `json:"isConfigured"`
	SignedIn       bool       `json:"isSignedIn"`
	HasLocalSync   bool       `json:"hasLocalSync"`
	LastSync       *time.Time `json:"lastSync,omitempty"`
	LastGoogleSync *time.Time `json:"lastGoogleSync,omitempty"`
	DeviceID       string     `json:"deviceId"`
}

// SyncStatus reports sync state. It creates the device id if needed.
func (s *Store) SyncStatus(ctx context.Context) (SyncStatus, error) {
	dev, err := s.DeviceID(ctx)
	if err != nil {
		return SyncStatus{}, err
	}
	st := SyncStatus{DeviceID: dev}

	if cid, err := s.GoogleClientID(ctx); err == nil && cid != "" {
		st.Configured = true
	}
	if _, err := s.LoadToken(ctx); err == nil {
		st.SignedIn = true
	}

	m, ok, err := s.LoadSyncMarker(ctx)
	if err != nil {
		return SyncStatus{}, err
	}
	if ok {
		last := m.LastSync
		st.HasLocalSync = true
		st.LastSync = &last
		st.LastGoogleSync = m.LastGoogleSync
	}
	return st, nil
}

func (s *Store) SetGoogleClientID(ctx context.Context, clientID string) error {
	return s.Set(ctx, KeyGoogleClient, []byte(clientID))
}

func (s *Store) GoogleClientID(ctx context.Context) (string, error) {
	data, err := s.Get(ctx, KeyGoogleClient)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Store) SaveToken(ctx context.Context, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	return s.Set(ctx, KeyGoogleToken, data)
}

// LoadToken returns the saved OAuth token or an error wrapping ErrNotFound.
func (s *Store) LoadToken(ctx context.Context) (*oauth2.Token, error) {
	data, err := s.Get(ctx, KeyGoogleToken)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return &tok, nil
}

// SignOut forgets the Google token.
func (s *Store) SignOut(ctx context.Context) error {
	return s.Delete(ctx, KeyGoogleToken)
}
