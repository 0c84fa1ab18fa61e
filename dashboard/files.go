package dashboard

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/spreads/account"
	"github.com/rustyeddy/spreads/impexp"
)

// Export returns the manual export file and its suggested name.
func (s *Service) Export() (data []byte, name string, err error) {
	now := s.opts.Now()
	data, err = impexp.Marshal(impexp.NewExport(s.Record(), now))
	if err != nil {
		return nil, "", fmt.Errorf("export: %w", err)
	}
	return data, impexp.ExportFileName(now), nil
}

// SyncExport returns a sync document for carrying the account to another
// device.
func (s *Service) SyncExport(ctx context.Context) (data []byte, name string, err error) {
	dev, err := s.store.DeviceID(ctx)
	if err != nil {
		return nil, "", err
	}
	now := s.opts.Now()
	data, err = impexp.Marshal(impexp.NewSyncDoc(s.Record(), dev, now))
	if err != nil {
		return nil, "", fmt.Errorf("sync export: %w", err)
	}
	return data, impexp.SyncExportFileName(now), nil
}

// Import replaces the account with the one in data, which may be a manual
// export, a bare record or a sync document. The current account is backed
// up first.
func (s *Service) Import(ctx context.Context, data []byte) (account.Record, error) {
	rec, err := impexp.ParseImport(data)
	if err != nil {
		return account.Record{}, err
	}
	if err := s.Replace(ctx, rec); err != nil {
		return account.Record{}, err
	}
	return rec, nil
}

// Replace swaps in rec after backing up the current account, then saves.
func (s *Service) Replace(ctx context.Context, rec account.Record) error {
	acct, err := account.FromRecord(rec, s.accountOptions()...)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.CreateBackup(ctx, s.acct.Record()); err != nil {
		return fmt.Errorf("backup before replace: %w", err)
	}
	s.acct = acct
	s.log.Info("account replaced",
		zap.Float64("balance", rec.Balance), zap.Int("trades", len(rec.Trades)))
	return s.save(ctx)
}

// Reset backs up the account, clears saved state and starts over at the
// configured starting balance.
func (s *Service) Reset(ctx context.Context) error {
	fresh, err := account.New(s.opts.StartingBalance, s.accountOptions()...)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.CreateBackup(ctx, s.acct.Record()); err != nil {
		return fmt.Errorf("backup before reset: %w", err)
	}
	if err := s.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.acct = fresh
	s.log.Info("account reset", zap.Float64("balance", s.opts.StartingBalance))
	return s.save(ctx)
}

// Backup writes the current account to the backup slot.
func (s *Service) Backup(ctx context.Context) error {
	return s.store.CreateBackup(ctx, s.Record())
}

// Restore replaces the account with the backup.
func (s *Service) Restore(ctx context.Context) (account.Record, error) {
	rec, err := s.store.RestoreBackup(ctx)
	if err != nil {
		return account.Record{}, err
	}
	acct, err := account.FromRecord(rec, s.accountOptions()...)
	if err != nil {
		return account.Record{}, err
	}
	s.mu.Lock()
	s.acct = acct
	s.mu.Unlock()
	return rec, nil
}
