package main

import (
	"fmt"
	"os"

	"fjacquet/statement-ledger/cmd/categorize"
	"fjacquet/statement-ledger/cmd/ingest"
	"fjacquet/statement-ledger/cmd/root"
	"fjacquet/statement-ledger/cmd/validate"
	"fjacquet/statement-ledger/internal/config"
)

func init() {
	// Environment first so LEDGER_* overrides reach viper. Nothing is logged yet.
	config.LoadEnv(nil)

	root.Init()

	root.Cmd.AddCommand(ingest.Cmd)
	root.Cmd.AddCommand(validate.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
