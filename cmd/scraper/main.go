// Package main
package main

import "github.com/NotRanged/ranged-lodestone-recipe-db-scraper/cmd/scraper/commands"

func main() {
	commands.Execute()
}
