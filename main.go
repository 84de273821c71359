package main

import (
	"fmt"
	"os"

	"github.com/gerunddev/notionbridge/internal/commands"
	"github.com/gerunddev/notionbridge/internal/config"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "parse":
		commands.Parse(os.Args[2:])
	case "render":
		commands.Render(os.Args[2:])
	case "validate":
		commands.Validate(os.Args[2:])
	case "roundtrip":
		commands.Roundtrip(os.Args[2:])
	case "pull":
		commands.Pull(os.Args[2:])
	case "preview":
		commands.Preview(os.Args[2:])
	case "push":
		commands.Push(os.Args[2:])
	case "sync":
		commands.Sync(os.Args[2:])
	case "watch":
		commands.Watch(os.Args[2:])
	case "browse":
		commands.Browse(os.Args[2:])
	case "status":
		commands.Status()
	case "config":
		commands.Config()
	case "init":
		commands.Init()
	case "install":
		commands.Install()
	case "uninstall":
		commands.Uninstall()
	case "version", "-v", "--version":
		fmt.Printf("notionbridge v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	usage := fmt.Sprintf(`notionbridge - Convert between Markdown and Notion blocks

Usage:
  notionbridge <command> [options]

Commands:
  parse       Convert Markdown to Notion block JSON
  render      Convert Notion block JSON to Markdown
  validate    Check block JSON against the block schema
  roundtrip   Show what a Markdown -> blocks -> Markdown pass changes
  pull        Fetch a Notion page as Markdown
  preview     Render a page or note in the terminal
  push        Append a note to a Notion page (--replace to overwrite)
  sync        Push changed notes to the pages in their front matter
  watch       Push notes as they are saved
  browse      Browse the block tree of a note, JSON file or page
  status      Show configuration and push state
  config      Print the effective configuration
  init        Write a default config file
  install     Generate a user service running watch
  uninstall   Remove the user service
  version     Show version information
  help        Show this help message

Examples:
  notionbridge parse note.md --out blocks.json
  notionbridge render blocks.json
  cat note.md | notionbridge parse -
  notionbridge roundtrip note.md
  notionbridge pull https://www.notion.so/Plan-1f2e3d4c5b6a49788695a4b3c2d1e0f9
  notionbridge push 1f2e3d4c5b6a49788695a4b3c2d1e0f9 note.md --replace
  notionbridge sync --dry-run
  notionbridge watch

Configuration:
  Config file: %s
  State file:  %s
  Token:       notion_token in the config file or $%s

For more information, visit: https://github.com/gerunddev/notionbridge
`, config.ConfigPath(), config.StateFilePath(), config.TokenEnv)
	fmt.Print(usage)
}
