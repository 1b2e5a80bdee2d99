package main

import "taskledger/cmd/ledgerctl/root"

func main() {
	root.Execute()
}
