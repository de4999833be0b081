// Package browser fetches page source through a headless browser process.
package browser
