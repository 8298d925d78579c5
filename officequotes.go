// Package officequotes provides a lazily hydrated client cache over a fixed
// transcript corpus (seasons, episodes, scenes, quotes and characters) and a
// server-side service that returns the quotes surrounding a given quote.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, etree/, http/).
package officequotes
