package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleph-im/aleph-go/cmd/rpc"
	"github.com/aleph-im/aleph-go/lib"
	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "sign and broadcast messages with the stored account",
}

var (
	refFlag, engineFlag, hashFlag, extraFlag = "", "", "", ""
	noInline                                 = false
)

func init() {
	submitCmd.PersistentFlags().StringVar(&engineFlag, "engine", "", "storage engine for non inline content (storage ipfs)")
	submitCmd.PersistentFlags().BoolVar(&noInline, "no-inline", false, "always push the content to the storage engine")
	postCmd.Flags().StringVar(&refFlag, "ref", "", "the item hash or reference the post amends")
	storeCmd.Flags().StringVar(&hashFlag, "hash", "", "an already uploaded file hash, no upload happens")
	storeCmd.Flags().StringVar(&extraFlag, "extra", "", "json object merged into the store content")
	submitCmd.AddCommand(submitAggregateCmd)
	submitCmd.AddCommand(postCmd)
	submitCmd.AddCommand(storeCmd)
}

var (
	submitAggregateCmd = &cobra.Command{
		Use:   "aggregate <key> <json content>",
		Short: "set a key of the account's aggregate",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			account := loadSigningAccount()
			writeToConsole(client.SubmitAggregate(context.Background(), account.Address, args[0], jsonArg(args[1]), submitOptions(account)))
		},
	}

	postCmd = &cobra.Command{
		Use:   "post <type> <json content> --ref=<hash>",
		Short: "publish a post",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			account := loadSigningAccount()
			writeToConsole(client.SubmitPost(context.Background(), account.Address, args[0], refFlag, jsonArg(args[1]), submitOptions(account)))
		},
	}

	storeCmd = &cobra.Command{
		Use:   "store [file] --hash=<hash>",
		Short: "upload a file and reference it in a STORE message",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			account := loadSigningAccount()
			file := rpc.StoreFile{Hash: hashFlag}
			if len(args) != 0 {
				f, err := os.Open(args[0])
				if err != nil {
					writeToConsole(nil, lib.ErrReadFile(err))
				}
				defer func() { _ = f.Close() }()
				file.Name, file.Reader = filepath.Base(args[0]), f
			}
			var extra map[string]any
			if extraFlag != "" {
				if err := lib.UnmarshalJSON([]byte(extraFlag), &extra); err != nil {
					writeToConsole(nil, err)
				}
			}
			writeToConsole(client.SubmitStore(context.Background(), account.Address, file, extra, submitOptions(account)))
		},
	}
)

func submitOptions(account *lib.Account) rpc.SubmitOptions {
	return rpc.SubmitOptions{
		Channel:       config.Channel,
		NoInline:      noInline,
		StorageEngine: lib.ItemType(engineFlag),
		Account:       account,
	}
}

// jsonArg() parses a json argument, anything that is not json is taken as a string
func jsonArg(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}
