package cli

import (
	"context"
	"os"
	"strings"

	"github.com/aleph-im/aleph-go/cmd/rpc"
	"github.com/aleph-im/aleph-go/lib"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "query the aleph api",
}

var (
	keys, types, refs, addresses, tags, hashes, contentTypes = "", "", "", "", "", "", ""
	pageNumber, perPage                                      = 0, 0
	outFile                                                  = ""
)

func init() {
	queryCmd.PersistentFlags().IntVar(&pageNumber, "page-number", 0, "page number on a paginated call")
	queryCmd.PersistentFlags().IntVar(&perPage, "per-page", 0, "number of items per page on a paginated call")
	queryCmd.PersistentFlags().StringVar(&types, "types", "", "comma separated post types, or the message type for messages")
	queryCmd.PersistentFlags().StringVar(&refs, "refs", "", "comma separated refs")
	queryCmd.PersistentFlags().StringVar(&addresses, "addresses", "", "comma separated sender addresses")
	queryCmd.PersistentFlags().StringVar(&tags, "tags", "", "comma separated tags")
	queryCmd.PersistentFlags().StringVar(&hashes, "hashes", "", "comma separated item hashes")
	messagesCmd.Flags().StringVar(&contentTypes, "content-types", "", "comma separated content types")
	aggregateCmd.Flags().StringVar(&keys, "keys", "", "comma separated aggregate keys")
	fileCmd.Flags().StringVar(&outFile, "out", "", "write the file here instead of stdout")
	queryCmd.AddCommand(aggregateCmd)
	queryCmd.AddCommand(aggregatesCmd)
	queryCmd.AddCommand(profileCmd)
	queryCmd.AddCommand(postsCmd)
	queryCmd.AddCommand(messagesCmd)
	queryCmd.AddCommand(fileCmd)
}

var (
	aggregateCmd = &cobra.Command{
		Use:   "aggregate <address> --keys=profile,settings",
		Short: "query the aggregate of an address",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.FetchAggregate(context.Background(), args[0], split(keys)...))
		},
	}

	aggregatesCmd = &cobra.Command{
		Use:   "aggregates <address>... --keys=profile",
		Short: "query the aggregates of many addresses concurrently",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.FetchAggregates(context.Background(), args, split(keys)...))
		},
	}

	profileCmd = &cobra.Command{
		Use:   "profile <address>",
		Short: "query the profile of an address",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.FetchProfile(context.Background(), args[0]))
		},
	}

	postsCmd = &cobra.Command{
		Use:   "posts --types=note --per-page=10 --page-number=1",
		Short: "query posts",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.GetPosts(context.Background(), rpc.PostsParams{
				Types:      split(types),
				Pagination: perPage,
				Page:       pageNumber,
				Refs:       split(refs),
				Addresses:  split(addresses),
				Tags:       split(tags),
				Hashes:     split(hashes),
			}))
		},
	}

	messagesCmd = &cobra.Command{
		Use:   "messages --types=STORE --addresses=0x...",
		Short: "query messages",
		Run: func(cmd *cobra.Command, args []string) {
			writeToConsole(client.GetMessages(context.Background(), rpc.MessagesParams{
				Pagination:   perPage,
				Page:         pageNumber,
				MessageType:  lib.MessageType(strings.ToUpper(types)),
				ContentTypes: split(contentTypes),
				Refs:         split(refs),
				Addresses:    split(addresses),
				Tags:         split(tags),
				Hashes:       split(hashes),
			}))
		},
	}

	fileCmd = &cobra.Command{
		Use:   "file <hash> --out=file.bin",
		Short: "download a stored file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			bz, err := client.RetrieveFile(context.Background(), args[0])
			if err != nil {
				writeToConsole(nil, err)
			}
			if bz == nil {
				l.Warnf("File %s not found", args[0])
				return
			}
			if outFile == "" {
				writeToConsole(string(bz), nil)
				return
			}
			if e := os.WriteFile(outFile, bz, 0600); e != nil {
				writeToConsole(nil, lib.ErrWriteFile(e))
			}
			writeToConsole(len(bz), nil)
		},
	}
)

// split() turns a comma separated flag into a list, empty stays empty
func split(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
