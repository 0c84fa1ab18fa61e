package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

var (
	tradeHeader   = []string{"trade_id", "underlying", "type", "short_strike", "long_strike", "credit", "max_risk", "dte", "open_time", "close_time", "realized_pl", "return_on_risk"}
	balanceHeader = []string{"time", "balance", "capital_at_risk", "available", "open_positions"}
)

// CSVJournal appends to two CSV files. Headers are written only when a file
// is new or empty.
type CSVJournal struct {
	trades  *csv.Writer
	balance *csv.Writer
	tf, bf  *os.File
}

func NewCSV(tradesPath, balancePath string) (*CSVJournal, error) {
	tf, tw, err := openCSV(tradesPath, tradeHeader)
	if err != nil {
		return nil, err
	}
	bf, bw, err := openCSV(balancePath, balanceHeader)
	if err != nil {
		tf.Close()
		return nil, err
	}
	return &CSVJournal{trades: tw, balance: bw, tf: tf, bf: bf}, nil
}

func openCSV(path string, header []string) (*os.File, *csv.Writer, error) {
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	st, err := fh.Stat()
	if err != nil {
		fh.Close()
		return nil, nil, err
	}

	w := csv.NewWriter(fh)
	if st.Size() == 0 {
		if err := w.Write(header); err != nil {
			fh.Close()
			return nil, nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			fh.Close()
			return nil, nil, fmt.Errorf("write %s header: %w", path, err)
		}
	}
	return fh, w, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		t.Underlying,
		t.Type,
		f(t.ShortStrike),
		f(t.LongStrike),
		f(t.Credit),
		f(t.MaxRisk),
		strconv.Itoa(t.DTE),
		t.OpenTime.UTC().Format(time.RFC3339),
		t.CloseTime.UTC().Format(time.RFC3339),
		f(t.RealizedPL),
		f(t.ReturnOnRisk),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordBalance(b BalanceSnapshot) error {
	err := j.balance.Write([]string{
		b.Time.UTC().Format(time.RFC3339),
		f(b.Balance),
		f(b.CapitalAtRisk),
		f(b.Available),
		strconv.Itoa(b.OpenPositions),
	})
	if err != nil {
		return err
	}
	j.balance.Flush()
	return j.balance.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.balance.Flush()
	if err := j.balance.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.bf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
