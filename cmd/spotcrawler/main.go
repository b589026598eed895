// Package main provides the entry point for the spotcrawler CLI.
//
// spotcrawler discovers and catalogs entities reachable from a seed page
// on a large content site, persisting all crawl state so the crawl
// survives restarts and can run indefinitely.
//
// Usage:
//
//	spotcrawler crawl --root run
//	spotcrawler report --root run
//
// See --help for all available options.
package main

// main is the entry point for spotcrawler.
func main() {
	Execute()
}
