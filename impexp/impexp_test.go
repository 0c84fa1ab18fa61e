package impexp

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/spreads/account"
	"github.com/rustyeddy/spreads/spread"
)

var now = time.Date(2024, 5, 6, 18, 45, 0, 0, time.UTC)

func sampleRecord(t *testing.T) account.Record {
	t.Helper()
	a, err := account.New(3000,
		account.WithClock(func() time.Time { return now }),
		account.WithIDs(func() string { return "01HX0000000000000000000000" }),
	)
	require.NoError(t, err)
	_, err = a.AddTrade(account.TradeParams{
		Type: spread.BullPut, Underlying: "SPY",
		CurrentPrice: 570, ShortStrike: 565, LongStrike: 560, Credit: 150, DTE: 30,
	})
	require.NoError(t, err)
	return a.Record()
}

func TestFileNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "credit-spreads-data-2024-05-06.json", ExportFileName(now))
	assert.Equal(t, "credit-spreads-sync-2024-05-06.json", SyncExportFileName(now))
}

func TestExportRoundTrip(t *testing.T) {
	t.Parallel()

	rec := sampleRecord(t)
	data, err := Marshal(NewExport(rec, now))
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, "\n  \"balance\": 3000")
	assert.Contains(t, s, `"exportDate": "2024-05-06T18:45:00Z"`)
	assert.Contains(t, s, `"version": "1.0"`)
	assert.NotContains(t, s, "accountData")

	got, err := ParseImport(data)
	require.NoError(t, err)
	assert.Equal(t, rec.Balance, got.Balance)
	require.Len(t, got.Trades, 1)
	assert.Equal(t, rec.Trades[0].ID, got.Trades[0].ID)
}

func TestSyncRoundTrip(t *testing.T) {
	t.Parallel()

	rec := sampleRecord(t)
	data, err := Marshal(NewSyncDoc(rec, "device_abc123xyz", now))
	require.NoError(t, err)

	doc, err := ParseSync(data)
	require.NoError(t, err)
	assert.Equal(t, "device_abc123xyz", doc.DeviceID)
	assert.True(t, doc.LastSync.Equal(now))
	assert.Equal(t, Version, doc.Version)
	assert.Len(t, doc.AccountData.Trades, 1)

	// A sync document is also a valid import.
	imported, err := ParseImport(data)
	require.NoError(t, err)
	assert.Equal(t, rec.StartingBalance, imported.StartingBalance)
}

func TestParseSyncRejects(t *testing.T) {
	t.Parallel()

	good := `{"balance":3000,"startingBalance":3000,"trades":[],"accountHistory":[3000]}`
	tests := []struct {
		name string
		data string
	}{
		{"no account", `{"lastSync":"2024-05-06T00:00:00Z","deviceId":"d"}`},
		{"no lastSync", `{"accountData":` + good + `,"deviceId":"d"}`},
		{"no deviceId", `{"accountData":` + good + `,"lastSync":"2024-05-06T00:00:00Z"}`},
		{"bad date", `{"accountData":` + good + `,"lastSync":"whenever","deviceId":"d"}`},
		{"bad account", `{"accountData":{"balance":-1,"startingBalance":3000,"trades":[],"accountHistory":[]},"lastSync":"2024-05-06T00:00:00Z","deviceId":"d"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseSync([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidSync)
		})
	}

	_, err := ParseSync([]byte(`{"accountData":{"balance":-1,"startingBalance":3000,"trades":[],"accountHistory":[]},"lastSync":"2024-05-06T00:00:00Z","deviceId":"d"}`))
	var ve *account.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, account.CodeNegativeBalance, ve.Code)
}

func TestParseImportRepairsJSON(t *testing.T) {
	t.Parallel()

	broken := `{"balance": 3000, "startingBalance": 3000, "trades": [], "accountHistory": [3000],}`
	rec, err := ParseImport([]byte(broken))
	require.NoError(t, err)
	assert.Equal(t, 3000.0, rec.Balance)
}

func TestParseImportRejects(t *testing.T) {
	t.Parallel()

	_, err := ParseImport([]byte(`{"balance": 3000, "trades": [], "accountHistory": []}`))
	var ve *account.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, account.CodeMissingField, ve.Code)
	assert.Equal(t, "startingBalance", ve.Field)
}

func TestBackupRoundTrip(t *testing.T) {
	t.Parallel()

	rec := sampleRecord(t)
	data, err := json.Marshal(NewBackup(rec, now))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `{"accountData":`))

	b, err := ParseBackup(data)
	require.NoError(t, err)
	assert.True(t, b.Timestamp.Equal(now))
	assert.Equal(t, rec.Balance, b.AccountData.Balance)

	_, err = ParseBackup([]byte(`{"timestamp":"2024-05-06T00:00:00Z"}`))
	assert.ErrorIs(t, err, account.ErrInvalidRecord)
}
