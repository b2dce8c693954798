// Package provider contains catalog clients.
//
// Interfaces are defined where they are consumed: spotify implements
// search.Searcher, while deezer and itunes implement preview.Finder and are
// only queried for tracks Spotify returns without a preview clip.
package provider
