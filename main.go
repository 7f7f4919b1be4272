// Package main is the entry point for the odoolink CLI application.
// It talks to Odoo-style business-object servers over XML-RPC.
package main

import (
	"odoolink/cli/cmd"
)

func main() {
	cmd.Execute()
}
