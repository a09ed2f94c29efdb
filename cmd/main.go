package main

import "github.com/aleph-im/aleph-go/cmd/cli"

func main() {
	cli.Execute()
}
