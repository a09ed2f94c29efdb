package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/aleph-im/aleph-go/lib"
	"github.com/aleph-im/aleph-go/lib/encryption"
	"github.com/spf13/cobra"
)

var (
	msgTypeFlag, curveFlag, targetFlag = string(lib.MessagePost), "", ""
)

func init() {
	signCmd.Flags().StringVar(&msgTypeFlag, "type", string(lib.MessagePost), "message type (AGGREGATE POST STORE)")
	encryptCmd.Flags().StringVar(&targetFlag, "target", "", "hex public key of the recipient, the stored account when empty")
	encryptCmd.Flags().StringVar(&curveFlag, "curve", "", "override the curve (secp256k1 secp256r1 ed25519)")
	decryptCmd.Flags().StringVar(&curveFlag, "curve", "", "override the curve (secp256k1 secp256r1 ed25519)")
}

var (
	signCmd = &cobra.Command{
		Use:   "sign <item_hash> --type=POST",
		Short: "sign a message referencing item_hash with the stored account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			account := loadSigningAccount()
			msg := lib.NewMessage("", config.Channel, account.Address, lib.MessageType(msgTypeFlag))
			msg.ItemHash = args[0]
			status, err := dispatcher.Sign(context.Background(), account, msg)
			if err != nil {
				writeToConsole(nil, err)
			}
			l.Infof("Sign status: %s", status)
			writeToConsole(msg, nil)
		},
	}

	verifyCmd = &cobra.Command{
		Use:   "verify [message.json]",
		Short: "verify a signed message read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			msg := new(lib.Message)
			if err := lib.UnmarshalJSON(readInput(args), msg); err != nil {
				writeToConsole(nil, err)
			}
			valid, err := dispatcher.Verify(msg)
			if err != nil {
				writeToConsole(nil, err)
			}
			if !valid {
				writeToConsole(nil, errors.New("invalid signature"))
			}
			writeToConsole("valid", nil)
		},
	}

	encryptCmd = &cobra.Command{
		Use:   "encrypt <content> --target=<hex public key>",
		Short: "encrypt content for a public key or for the stored account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			encryptor := encryption.NewEncryptor(l, metrics)
			var (
				out []byte
				err error
			)
			if targetFlag == "" {
				out, err = encryptor.EncryptForSelf(loadSigningAccount(), []byte(args[0]), curveOptions()...)
			} else {
				target, e := lib.StringToBytes(targetFlag)
				if e != nil {
					writeToConsole(nil, e)
				}
				out, err = encryptor.Encrypt(target, []byte(args[0]), curveOptions()...)
			}
			writeToConsole(string(out), err)
		},
	}

	decryptCmd = &cobra.Command{
		Use:   "decrypt <hex envelope>",
		Short: "decrypt an envelope with the stored account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			out, err := encryption.NewEncryptor(l, metrics).Decrypt(loadSigningAccount(), []byte(args[0]), curveOptions()...)
			writeToConsole(string(out), err)
		},
	}
)

// curveOptions() converts the --curve flag into encryption options
func curveOptions() []encryption.Option {
	if curveFlag == "" {
		return nil
	}
	c, err := encryption.ParseCurve(curveFlag)
	if err != nil {
		writeToConsole(nil, err)
	}
	return []encryption.Option{encryption.WithCurve(c)}
}

// readInput() reads the file named by the first argument or stdin
func readInput(args []string) []byte {
	var (
		bz  []byte
		err error
	)
	if len(args) != 0 && args[0] != "-" {
		bz, err = os.ReadFile(args[0])
	} else {
		bz, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		writeToConsole(nil, lib.ErrReadFile(err))
	}
	return bz
}
