package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tristann9/cryptomator"
)

var rootCmd = &cobra.Command{
	Use:   "cryptomator",
	Short: "Manage encrypted vaults",
	Long: `cryptomator stores files and folders inside an encrypted vault
directory. Names and contents are opaque on disk; the vault is unlocked
with a passphrase.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("vault", "", "path to the vault directory")
	rootCmd.PersistentFlags().String("passphrase", "", "vault passphrase (or CRYPTOMATOR_PASSPHRASE)")
	rootCmd.PersistentFlags().Int("chunk-size", 0, "plaintext chunk size for new files")

	viper.SetEnvPrefix("CRYPTOMATOR")
	viper.AutomaticEnv()
	viper.BindPFlag("vault", rootCmd.PersistentFlags().Lookup("vault"))
	viper.BindPFlag("passphrase", rootCmd.PersistentFlags().Lookup("passphrase"))
	viper.BindPFlag("chunk_size", rootCmd.PersistentFlags().Lookup("chunk-size"))

	rootCmd.AddCommand(initCmd, mkdirCmd, lsCmd, mvCmd, putCmd, getCmd, rmCmd)
}

// openVault unlocks the vault named by --vault / CRYPTOMATOR_VAULT and
// returns the filesystem handle. create controls whether the logical root
// is materialized, which only the init command wants.
func openVault(create bool) (*cryptomator.CryptoFS, error) {
	vaultPath := viper.GetString("vault")
	if vaultPath == "" {
		return nil, fmt.Errorf("no vault specified, use --vault or CRYPTOMATOR_VAULT")
	}
	passphrase := viper.GetString("passphrase")
	if passphrase == "" {
		return nil, fmt.Errorf("no passphrase specified, use --passphrase or CRYPTOMATOR_PASSPHRASE")
	}

	base, err := newOsFS(vaultPath)
	if err != nil {
		return nil, fmt.Errorf("opening vault directory: %w", err)
	}
	cryptor, err := cryptomator.NewStandardCryptor(nil)
	if err != nil {
		return nil, err
	}
	cfg := &cryptomator.Config{ChunkSize: uint32(viper.GetInt("chunk_size"))}
	fs, err := cryptomator.NewWithConfig(base, cryptor, passphrase, cfg)
	if err != nil {
		return nil, err
	}
	if create {
		if err := fs.Create(cryptomator.IncludingParents); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
