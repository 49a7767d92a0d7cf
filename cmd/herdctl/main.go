// Command herdctl is the operational CLI for the breeding-suitability engine.
package main

import "herdcore/internal/cli"

func main() {
	cli.Execute()
}
