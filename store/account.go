package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rustyeddy/spreads/account"
	"github.com/rustyeddy/spreads/id"
	"github.com/rustyeddy/spreads/impexp"
	"go.uber.org/zap"
)

func (s *Store) SaveAccount(ctx context.Context, rec account.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}
	return s.Set(ctx, KeyAccount, data)
}

// LoadAccount returns the saved record. ok is false when nothing is saved.
// A stored record that fails validation is returned as an error so the
// caller can decide whether to fall back to the backup.
func (s *Store) LoadAccount(ctx context.Context) (rec account.Record, ok bool, err error) {
	data, err := s.Get(ctx, KeyAccount)
	if errors.Is(err, ErrNotFound) {
		return account.Record{}, false, nil
	}
	if err != nil {
		return account.Record{}, false, err
	}
	rec, err = account.ParseRecord(data)
	if err != nil {
		s.log.Warn("saved account is invalid", zap.Error(err))
		return account.Record{}, false, fmt.Errorf("load account: %w", err)
	}
	return rec, true, nil
}

// ClearAll removes the account and the sync marker. Settings, the device
// id and the backup survive.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.Delete(ctx, KeyAccount, KeySync)
}

// Settings are user preferences.
type Settings struct {
	RiskPercentage float64 `json:"riskPercentage"`
	DefaultDTE     int     `json:"defaultDTE"`
	AutoSave       bool    `json:"autoSave"`
	Notifications  bool    `json:"notifications"`
}

func DefaultSettings() Settings {
	return Settings{RiskPercentage: 15, DefaultDTE: 30, AutoSave: true, Notifications: true}
}

// LoadSettings never fails on a missing or unreadable slot; it falls back
// to DefaultSettings. Fields absent from the stored JSON keep their default.
func (s *Store) LoadSettings(ctx context.Context) Settings {
	out := DefaultSettings()
	data, err := s.Get(ctx, KeySettings)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("read settings", zap.Error(err))
		}
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil {
		s.log.Warn("settings are corrupt, using defaults", zap.Error(err))
		return DefaultSettings()
	}
	return out
}

func (s *Store) SaveSettings(ctx context.Context, st Settings) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.Set(ctx, KeySettings, data)
}

// CreateBackup overwrites the single backup slot with rec.
func (s *Store) CreateBackup(ctx context.Context, rec account.Record) error {
	data, err := json.Marshal(impexp.NewBackup(rec, s.now()))
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	if err := s.Set(ctx, KeyBackup, data); err != nil {
		return err
	}
	s.log.Info("backup created", zap.Int("trades", len(rec.Trades)))
	return nil
}

// RestoreBackup copies the backup into the account slot and returns it.
func (s *Store) RestoreBackup(ctx context.Context) (account.Record, error) {
	data, err := s.Get(ctx, KeyBackup)
	if err != nil {
		return account.Record{}, fmt.Errorf("restore backup: %w", err)
	}
	b, err := impexp.ParseBackup(data)
	if err != nil {
		return account.Record{}, fmt.Errorf("restore backup: %w", err)
	}
	if err := s.SaveAccount(ctx, b.AccountData); err != nil {
		return account.Record{}, err
	}
	s.log.Info("backup restored", zap.Time("taken", b.Timestamp))
	return b.AccountData, nil
}

// DeviceID returns this installation's id, creating it on first use.
func (s *Store) DeviceID(ctx context.Context) (string, error) {
	data, err := s.Get(ctx, KeyDeviceID)
	if err == nil {
		return string(data), nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	dev := id.DeviceID()
	if err := s.Set(ctx, KeyDeviceID, []byte(dev)); err != nil {
		return "", err
	}
	s.log.Info("device id created", zap.String("device", dev))
	return dev, nil
}
