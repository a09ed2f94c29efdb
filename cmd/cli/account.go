package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/signer"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "create, import and show the account stored in the data directory",
}

var (
	nameFlag, pathFlag, prefixFlag = "", "", ""
	formatFlag                     = -1
	overwrite                      = false
)

func init() {
	accountCmd.PersistentFlags().StringVar(&chainFlag, "chain", "", "account chain (NULS NULS2 ETH DOT CSDK SOL AVAX), defaults to the configured chain")
	accountCmd.PersistentFlags().StringVar(&nameFlag, "name", "", "display name of the account")
	accountCmd.PersistentFlags().BoolVar(&overwrite, "overwrite", false, "replace an existing account file")
	accountImportCmd.Flags().StringVar(&pathFlag, "path", "", "BIP32 derivation path for ETH and CSDK mnemonics")
	accountImportCmd.Flags().StringVar(&prefixFlag, "prefix", "", "bech32 prefix for CSDK or address prefix for NULS2")
	accountImportCmd.Flags().IntVar(&formatFlag, "format", -1, "ss58 address format for DOT")
	accountCmd.AddCommand(accountNewCmd)
	accountCmd.AddCommand(accountImportCmd)
	accountCmd.AddCommand(accountShowCmd)
}

var (
	accountNewCmd = &cobra.Command{
		Use:   "new --chain=ETH --name=main",
		Short: "create a fresh account and print its secret once",
		Run: func(cmd *cobra.Command, args []string) {
			acc, err := signer.NewAccount(selectedChain())
			if err != nil {
				writeToConsole(nil, err)
			}
			acc.WithName(nameFlag)
			secret := acc.Mnemonics
			if secret == "" {
				if secret, err = signer.ExportPrivateKey(acc); err != nil {
					writeToConsole(nil, err)
				}
			}
			saveAccount(acc)
			l.Warnf("Write down the secret below, it is not stored and cannot be recovered:")
			writeToConsole(secret, nil)
			writeToConsole(publicAccount(acc), nil)
		},
	}

	accountImportCmd = &cobra.Command{
		Use:   "import --chain=CSDK --prefix=osmo",
		Short: "import an account from a private key or a mnemonic read from the terminal",
		Run: func(cmd *cobra.Command, args []string) {
			secret := readSecret(secretEnv(), "Enter the private key or the mnemonic:")
			stub := lib.NewAccount(selectedChain(), "", nil, nil)
			o, err := signer.RestoreOptions(stub, secret)
			if err != nil {
				writeToConsole(nil, err)
			}
			o.Path, o.Prefix, o.Name = pathFlag, prefixFlag, nameFlag
			if formatFlag >= 0 {
				format := uint8(formatFlag)
				o.Format = &format
			}
			acc, err := signer.ImportAccount(stub.Chain, o)
			if err != nil {
				writeToConsole(nil, err)
			}
			saveAccount(acc)
			writeToConsole(publicAccount(acc), nil)
		},
	}

	accountShowCmd = &cobra.Command{
		Use:   "show",
		Short: "print the stored account",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(loadAccount(), nil)
		},
	}
)

// selectedChain() returns the --chain flag or the configured chain
func selectedChain() lib.ChainType {
	if chainFlag != "" {
		return lib.NewChainType(chainFlag)
	}
	return config.Chain
}

// secretEnv() picks the environment variable holding the key material
func secretEnv() string {
	if os.Getenv(MnemonicEnv) != "" {
		return MnemonicEnv
	}
	return PrivateKeyEnv
}

// publicAccount() strips the mnemonics, the account file never holds key material
func publicAccount(acc *lib.Account) *lib.Account {
	public := *acc
	public.Mnemonics, public.Key = "", nil
	return &public
}

// saveAccount() writes the public account description to the data directory
func saveAccount(acc *lib.Account) {
	if _, err := os.Stat(filepath.Join(config.DataDirPath, lib.AccountFilePath)); err == nil && !overwrite {
		writeToConsole(nil, errors.New("an account file already exists, use --overwrite to replace it"))
	}
	if err := lib.SaveJSONToFile(publicAccount(acc), config.DataDirPath, lib.AccountFilePath); err != nil {
		writeToConsole(nil, err)
	}
	l.Infof("Saved %s account %s to %s", acc.Chain, acc.Address, lib.AccountFilePath)
}

// loadAccount() reads the public account description from the data directory
func loadAccount() *lib.Account {
	acc := new(lib.Account)
	if err := lib.NewJSONFromFile(acc, config.DataDirPath, lib.AccountFilePath); err != nil {
		writeToConsole(nil, err)
	}
	return acc
}

// loadSigningAccount() unlocks the stored account with the key material read from the environment or the terminal
func loadSigningAccount() *lib.Account {
	acc := loadAccount()
	if acc.Get(signer.ExtraSource) == signer.SourceExternal {
		writeToConsole(nil, lib.ErrExternalSignerOnly())
	}
	secret := readSecret(secretEnv(), "Enter the private key or the mnemonic of "+acc.Address+":")
	unlocked, err := signer.Unlock(acc, secret)
	if err != nil {
		writeToConsole(nil, err)
	}
	return unlocked
}
