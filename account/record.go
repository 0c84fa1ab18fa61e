package account

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/rustyeddy/spreads/spread"
)

// Record is the persisted, JSON-compatible form of an Account.
type Record struct {
	Balance         float64   `json:"balance"`
	StartingBalance float64   `json:"startingBalance"`
	Trades          []Trade   `json:"trades"`
	AccountHistory  []float64 `json:"accountHistory"`
}

var ErrInvalidRecord = errors.New("invalid account record")

// Code enumerates why a record was rejected.
type Code int

const (
	CodeMalformed Code = iota + 1
	CodeMissingField
	CodeNegativeBalance
	CodeNonPositiveStartingBalance
	CodeInvalidTradeType
	CodeInvalidStatus
	CodeInvalidDate
	CodeLedgerMismatch
	CodeMissingCloseDate
	CodeDuplicateID
)

var codeNames = map[Code]string{
	CodeMalformed:                  "malformed",
	CodeMissingField:               "missing_field",
	CodeNegativeBalance:            "negative_balance",
	CodeNonPositiveStartingBalance: "non_positive_starting_balance",
	CodeInvalidTradeType:           "invalid_trade_type",
	CodeInvalidStatus:              "invalid_status",
	CodeInvalidDate:                "invalid_date",
	CodeLedgerMismatch:             "ledger_mismatch",
	CodeMissingCloseDate:           "missing_close_date",
	CodeDuplicateID:                "duplicate_id",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// ValidationError is a typed record rejection.
type ValidationError struct {
	Code  Code
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidRecord, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidRecord, e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRecord }

func invalid(code Code, field, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Validate checks the record's field values. Shape checks that need the raw
// JSON (missing arrays, unknown enums) happen in ParseRecord.
func (r Record) Validate() error {
	if math.IsNaN(r.Balance) || r.Balance < 0 {
		return invalid(CodeNegativeBalance, "balance", "must be a number >= 0")
	}
	if math.IsNaN(r.StartingBalance) || r.StartingBalance <= 0 {
		return invalid(CodeNonPositiveStartingBalance, "startingBalance", "must be a number > 0")
	}
	seen := make(map[ID]int, len(r.Trades))
	for i, t := range r.Trades {
		field := fmt.Sprintf("trades[%d]", i)
		if t.ID == "" {
			return invalid(CodeMissingField, field+".id", "is required")
		}
		if j, ok := seen[t.ID]; ok {
			return invalid(CodeDuplicateID, field+".id", "%q already used by trades[%d]", t.ID, j)
		}
		seen[t.ID] = i
		if t.Type != spread.BullPut && t.Type != spread.BearCall {
			return invalid(CodeInvalidTradeType, field+".type", "must be Bull Put Spread or Bear Call Spread")
		}
		if t.Underlying == "" {
			return invalid(CodeMissingField, field+".underlying", "is required")
		}
		if t.OpenDate.IsZero() {
			return invalid(CodeMissingField, field+".openDate", "is required")
		}
		if !t.Status.Valid() {
			return invalid(CodeInvalidStatus, field+".status", "must be Open or Closed, got %q", t.Status)
		}
		if t.Status == Closed && (t.CloseDate == nil || t.CloseDate.IsZero()) {
			return invalid(CodeMissingCloseDate, field+".closeDate", "is required on a closed trade")
		}
	}
	return nil
}

// CheckLedger verifies the balance and history invariants. Imported ledgers
// may predate them, so loading does not require this to pass.
func (r Record) CheckLedger() error {
	sum := r.StartingBalance
	closed := 0
	for _, t := range r.Trades {
		if t.Status == Closed {
			sum += t.PnL
			closed++
		}
	}
	if math.Abs(sum-r.Balance) > 1e-6 {
		return invalid(CodeLedgerMismatch, "balance", "%.2f does not match starting balance plus realized P/L %.2f", r.Balance, sum)
	}
	if len(r.AccountHistory) != closed+1 {
		return invalid(CodeLedgerMismatch, "accountHistory", "has %d entries, want %d", len(r.AccountHistory), closed+1)
	}
	return nil
}

type rawTrade struct {
	ID         json.RawMessage `json:"id"`
	Type       *string         `json:"type"`
	Underlying *string         `json:"underlying"`
	OpenDate   *string         `json:"openDate"`
	Status     *string         `json:"status"`
}

type rawRecord struct {
	Balance         *float64           `json:"balance"`
	StartingBalance *float64           `json:"startingBalance"`
	Trades          *[]json.RawMessage `json:"trades"`
	AccountHistory  *[]float64         `json:"accountHistory"`
}

// ParseRecord decodes and validates a persisted account. Every failure is a
// *ValidationError.
func ParseRecord(data []byte) (Record, error) {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, invalid(CodeMalformed, "", "%v", err)
	}
	if raw.Balance == nil {
		return Record{}, invalid(CodeMissingField, "balance", "is required")
	}
	if raw.StartingBalance == nil {
		return Record{}, invalid(CodeMissingField, "startingBalance", "is required")
	}
	if raw.Trades == nil {
		return Record{}, invalid(CodeMissingField, "trades", "must be an array")
	}
	if raw.AccountHistory == nil {
		return Record{}, invalid(CodeMissingField, "accountHistory", "must be an array")
	}

	for i, rt := range *raw.Trades {
		if err := checkRawTrade(i, rt); err != nil {
			return Record{}, err
		}
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, invalid(CodeMalformed, "", "%v", err)
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func checkRawTrade(i int, data json.RawMessage) error {
	field := fmt.Sprintf("trades[%d]", i)

	var rt rawTrade
	if err := json.Unmarshal(data, &rt); err != nil {
		return invalid(CodeMalformed, field, "%v", err)
	}
	if len(rt.ID) == 0 || string(rt.ID) == "null" {
		return invalid(CodeMissingField, field+".id", "is required")
	}
	if rt.Type == nil {
		return invalid(CodeMissingField, field+".type", "is required")
	}
	if *rt.Type != spread.BullPut.String() && *rt.Type != spread.BearCall.String() {
		return invalid(CodeInvalidTradeType, field+".type", "must be Bull Put Spread or Bear Call Spread, got %q", *rt.Type)
	}
	if rt.Underlying == nil {
		return invalid(CodeMissingField, field+".underlying", "is required")
	}
	if rt.OpenDate == nil {
		return invalid(CodeMissingField, field+".openDate", "is required")
	}
	if _, err := ParseDate(*rt.OpenDate); err != nil {
		return invalid(CodeInvalidDate, field+".openDate", "%v", err)
	}
	if rt.Status == nil {
		return invalid(CodeMissingField, field+".status", "is required")
	}
	if !Status(*rt.Status).Valid() {
		return invalid(CodeInvalidStatus, field+".status", "must be Open or Closed, got %q", *rt.Status)
	}
	return nil
}
