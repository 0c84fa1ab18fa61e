package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/rustyeddy/spreads/cloudsync"
	"github.com/rustyeddy/spreads/format"
	"github.com/rustyeddy/spreads/id"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the account through Google Drive",
	Long: `Keep one copy of the account in the app data folder of your Google Drive
so other devices can pull it.

Subcommands:
  login   - Authorize access to Google Drive
  push    - Upload this device's account
  pull    - Replace this device's account with the Drive copy
  status  - Show sync state
  logout  - Forget the saved authorization

The OAuth client id and secret are read from GOOGLE_CLIENT_ID and
GOOGLE_CLIENT_SECRET (see sync.client_id_env in the config).`,
}

var syncLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize access to Google Drive",
	Args:  cobra.NoArgs,
	RunE:  withApp(runSyncLogin),
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the account to Google Drive",
	Args:  cobra.NoArgs,
	RunE:  withApp(runSyncPush),
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace the account with the Google Drive copy",
	Args:  cobra.NoArgs,
	RunE:  withApp(runSyncPull),
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync state",
	Args:  cobra.NoArgs,
	RunE:  withApp(runSyncStatus),
}

var syncLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved Google authorization",
	Args:  cobra.NoArgs,
	RunE:  withApp(runSyncLogout),
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncLoginCmd)
	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncPullCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncLogoutCmd)
}

func (a *app) oauthConfig() (*oauth2.Config, error) {
	clientID, secret, err := a.cfg.OAuthCredentials()
	if err != nil {
		return nil, err
	}
	return cloudsync.OAuthConfig(clientID, secret, a.cfg.Sync.RedirectURL), nil
}

func (a *app) syncer(cmd *cobra.Command) (*cloudsync.Syncer, error) {
	conf, err := a.oauthConfig()
	if err != nil {
		return nil, err
	}
	ts, err := cloudsync.TokenSource(cmd.Context(), conf, a.store)
	if err != nil {
		return nil, err
	}
	drive := cloudsync.NewDrive(ts, cloudsync.Options{Logger: a.log})
	return cloudsync.NewSyncer(drive, a.store, a.log), nil
}

func runSyncLogin(cmd *cobra.Command, args []string, a *app) error {
	conf, err := a.oauthConfig()
	if err != nil {
		return err
	}

	state := id.New()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Open this URL in a browser and grant access:")
	fmt.Fprintf(out, "\n  %s\n\n", conf.AuthCodeURL(state, oauth2.AccessTypeOffline))
	fmt.Fprint(out, "Paste the authorization code: ")

	code, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	code = strings.TrimSpace(code)
	if code == "" {
		if err != nil {
			return fmt.Errorf("read code: %w", err)
		}
		return fmt.Errorf("no authorization code entered")
	}

	tok, err := conf.Exchange(cmd.Context(), code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	if err := a.store.SaveToken(cmd.Context(), tok); err != nil {
		return err
	}
	if err := a.store.SetGoogleClientID(cmd.Context(), conf.ClientID); err != nil {
		return err
	}
	fmt.Fprintln(out, "✓ Signed in to Google Drive")
	return nil
}

func runSyncPush(cmd *cobra.Command, args []string, a *app) error {
	s, err := a.syncer(cmd)
	if err != nil {
		return err
	}
	m, err := s.Push(cmd.Context(), a.svc.Record())
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Pushed %d trades from device %s\n", len(m.AccountData.Trades), m.DeviceID)
	return nil
}

func runSyncPull(cmd *cobra.Command, args []string, a *app) error {
	s, err := a.syncer(cmd)
	if err != nil {
		return err
	}
	doc, err := s.Pull(cmd.Context())
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	if err := a.svc.Replace(cmd.Context(), doc.AccountData); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Pulled %d trades synced from device %s at %s. Balance %s\n",
		len(doc.AccountData.Trades), doc.DeviceID, doc.LastSync.Local().Format("2006-01-02 15:04"),
		format.Currency(doc.AccountData.Balance, false))
	return nil
}

func runSyncStatus(cmd *cobra.Command, args []string, a *app) error {
	st, err := a.store.SyncStatus(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Device:        %s\n", st.DeviceID)
	fmt.Fprintf(out, "Configured:    %v\n", st.Configured)
	fmt.Fprintf(out, "Signed in:     %v\n", st.SignedIn)
	if st.LastSync != nil {
		fmt.Fprintf(out, "Last sync:     %s\n", st.LastSync.Local().Format("2006-01-02 15:04"))
	}
	if st.LastGoogleSync != nil {
		fmt.Fprintf(out, "Last Drive:    %s\n", st.LastGoogleSync.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runSyncLogout(cmd *cobra.Command, args []string, a *app) error {
	if err := a.store.SignOut(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Signed out")
	return nil
}
