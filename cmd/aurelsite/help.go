package main

import (
	"fmt"
	"io"
)

const helpText = `aurelsite - static site generator for the Aurel Systems website

Usage:
  aurelsite [command] [flags]

With no command the site is generated from site.yaml (or the defaults).

Commands:
  gen [--clean] [--unsafe]          Generate one page per content section.
                                    --clean only removes pages an earlier build wrote
  serve [--port N]                  Build, serve the output dir and live-reload on change
  themes                            Write the people/announcement theme tester pages
  crawl [url] [--out F] [--sitemap F] [--log-file F] [--markdown-dir D] [--delay D] [--max-pages N]
                                    Crawl the live site and capture its content.
                                    Output names default to timestamped files
  migrate [--source D] [--dest D] [--domain H]
                                    Copy saved pages into flat files with rewritten links
  flatten [--root D] [--target D]   Copy every index.html into one directory
  new site <name>                   Create a new site scaffold
  new <section> <title>             Create a dated post in a section
  help                              Show this help

Every command accepts --config/-c to read a different site.yaml.
Use "aurelsite <command> --help" for its flags.
`

func printHelp(w io.Writer) {
	fmt.Fprint(w, helpText)
}
