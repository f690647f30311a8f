package main

import "github.com/ovaphlow/pitchfork/service-ledger-go/cmd/ledgerctl/cmd"

func main() {
	cmd.Execute()
}
