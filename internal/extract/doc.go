// Package extract turns a downloaded chapter page into the single-line markup
// fragment the normalizer and converter expect.
//
// The page is parsed with goquery; the content node is detached from its
// styling, given a heading from the page title, and serialized with a small
// custom renderer that escapes only what markup requires.
package extract
