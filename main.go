// Package main is the entry point for the b5stats CLI tool, which records
// Baseball 5 matches play by play and reports batting and fielding metrics.
package main

import "github.com/pable/go-b5-metrics/cmd"

func main() {
	cmd.Execute()
}
