// Package fetch retrieves raw chapter pages from a seed directory, over HTTP,
// or through a headless browser, and rejects any page that does not look like
// a chapter page. Remote fetchers are paced with a token-bucket limiter and run
// strictly one at a time.
package fetch
