// Package impexp reads and writes the account's file formats: the manual
// export, the multi-device sync document and the local backup.
package impexp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/pretty"

	"github.com/rustyeddy/spreads/account"
)

const Version = "1.0"

// SyncFileName is the cloud copy's name.
const SyncFileName = "credit-spreads-data.json"

var ErrInvalidSync = errors.New("invalid sync document")

// Export is the manual export: the account record inline plus metadata.
type Export struct {
	account.Record
	ExportDate time.Time `json:"exportDate"`
	Version    string    `json:"version"`
}

// SyncDoc carries an account between devices.
type SyncDoc struct {
	AccountData account.Record `json:"accountData"`
	LastSync    time.Time      `json:"lastSync"`
	DeviceID    string         `json:"deviceId"`
	Version     string         `json:"version"`
}

// Backup is the single local recovery copy.
type Backup struct {
	AccountData account.Record `json:"accountData"`
	Timestamp   time.Time      `json:"timestamp"`
	Version     string         `json:"version"`
}

func ExportFileName(now time.Time) string {
	return "credit-spreads-data-" + now.UTC().Format("2006-01-02") + ".json"
}

func SyncExportFileName(now time.Time) string {
	return "credit-spreads-sync-" + now.UTC().Format("2006-01-02") + ".json"
}

// Marshal encodes v as indented JSON.
func Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return pretty.Pretty(b), nil
}

func NewExport(rec account.Record, now time.Time) Export {
	return Export{Record: rec, ExportDate: now.UTC(), Version: Version}
}

func NewSyncDoc(rec account.Record, deviceID string, now time.Time) SyncDoc {
	return SyncDoc{AccountData: rec, LastSync: now.UTC(), DeviceID: deviceID, Version: Version}
}

func NewBackup(rec account.Record, now time.Time) Backup {
	return Backup{AccountData: rec, Timestamp: now.UTC(), Version: Version}
}

// normalize returns data unchanged when it is valid JSON, otherwise one
// repair attempt. Hand-edited exports commonly have trailing commas or
// single quotes.
func normalize(data []byte) ([]byte, error) {
	if json.Valid(data) {
		return data, nil
	}
	fixed, err := jsonrepair.JSONRepair(string(data))
	if err != nil {
		return nil, &account.ValidationError{Code: account.CodeMalformed, Msg: fmt.Sprintf("not JSON: %v", err)}
	}
	return []byte(fixed), nil
}

// ParseImport accepts a manual export, a bare account record or a sync
// document and returns the validated account record.
func ParseImport(data []byte) (account.Record, error) {
	data, err := normalize(data)
	if err != nil {
		return account.Record{}, err
	}

	var probe struct {
		AccountData json.RawMessage `json:"accountData"`
	}
	if json.Unmarshal(data, &probe) == nil && len(probe.AccountData) > 0 {
		doc, err := parseSync(data)
		if err != nil {
			return account.Record{}, err
		}
		return doc.AccountData, nil
	}
	return account.ParseRecord(data)
}

// ParseSync decodes and validates a sync document. lastSync and deviceId
// are required in addition to a valid account record.
func ParseSync(data []byte) (SyncDoc, error) {
	data, err := normalize(data)
	if err != nil {
		return SyncDoc{}, err
	}
	return parseSync(data)
}

func parseSync(data []byte) (SyncDoc, error) {
	var raw struct {
		AccountData json.RawMessage `json:"accountData"`
		LastSync    string          `json:"lastSync"`
		DeviceID    string          `json:"deviceId"`
		Version     string          `json:"version"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return SyncDoc{}, fmt.Errorf("%w: %v", ErrInvalidSync, err)
	}
	if len(raw.AccountData) == 0 {
		return SyncDoc{}, fmt.Errorf("%w: accountData is required", ErrInvalidSync)
	}
	if raw.LastSync == "" {
		return SyncDoc{}, fmt.Errorf("%w: lastSync is required", ErrInvalidSync)
	}
	if raw.DeviceID == "" {
		return SyncDoc{}, fmt.Errorf("%w: deviceId is required", ErrInvalidSync)
	}
	last, err := account.ParseDate(raw.LastSync)
	if err != nil {
		return SyncDoc{}, fmt.Errorf("%w: lastSync: %v", ErrInvalidSync, err)
	}

	rec, err := account.ParseRecord(raw.AccountData)
	if err != nil {
		return SyncDoc{}, fmt.Errorf("%w: %w", ErrInvalidSync, err)
	}
	return SyncDoc{AccountData: rec, LastSync: last.Time, DeviceID: raw.DeviceID, Version: raw.Version}, nil
}

// ParseBackup decodes a backup written by NewBackup.
func ParseBackup(data []byte) (Backup, error) {
	var raw struct {
		AccountData json.RawMessage `json:"accountData"`
		Timestamp   time.Time       `json:"timestamp"`
		Version     string          `json:"version"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Backup{}, &account.ValidationError{Code: account.CodeMalformed, Msg: err.Error()}
	}
	rec, err := account.ParseRecord(raw.AccountData)
	if err != nil {
		return Backup{}, err
	}
	return Backup{AccountData: rec, Timestamp: raw.Timestamp, Version: raw.Version}, nil
}
