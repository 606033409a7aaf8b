package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hendrikb/gmailops/internal/account"
	"github.com/hendrikb/gmailops/internal/auth"
	"github.com/hendrikb/gmailops/internal/config"
	"github.com/hendrikb/gmailops/internal/gmail"
	"github.com/hendrikb/gmailops/internal/logging"
)

// Version is set via ldflags at build time.
var Version = "dev"

var (
	configPath  string
	accountFlag string
	jsonOutput  bool
	quietFlag   bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gmailops",
	Short: "gmailops - Gmail automation toolkit",
	Long: `Gmailops: authenticate Gmail accounts, fetch emails with attachments,
send and draft messages, and forward invoice emails to a processing inbox.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger = logging.Setup(cfg.Logging)
		if quietFlag {
			logger = slog.New(slog.DiscardHandler)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gmailops version %s\n", Version)
	},
}

// resolveAccounts returns the accounts to operate on: the --account
// selection, or every discovered account directory.
func resolveAccounts() ([]account.Account, error) {
	if accountFlag != "" {
		acct := account.At(cfg.Root, accountFlag)
		if _, err := os.Stat(acct.CredentialsPath); err != nil {
			return nil, fmt.Errorf("account %s: %w (create %s with the OAuth client secret)",
				accountFlag, err, acct.CredentialsPath)
		}
		return []account.Account{acct}, nil
	}

	accounts := account.Discover(cfg.Root)
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no accounts found — add <email>/credentials.json directories under %s", cfg.Root)
	}
	return accounts, nil
}

// clientFor authenticates one account and wraps the service.
func clientFor(ctx context.Context, acct account.Account) (*gmail.Client, error) {
	svc, err := auth.LoadService(ctx, acct)
	if err != nil {
		return nil, err
	}
	return gmail.NewClient(svc), nil
}

func maxOrDefault(max int64) int64 {
	if max > 0 {
		return max
	}
	return cfg.MaxResults
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "gmailops.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&accountFlag, "account", "", "Account to use (default: all discovered accounts)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
