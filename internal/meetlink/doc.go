// Package meetlink parses Zoom meeting links into their meeting number and
// passcode components.
//
// Links come in straight from the CLI and from scheduling systems, so parsing
// is tolerant: tracking parameters and host fragments are ignored and only the
// /j/<number> path segment and pwd query value are extracted.
package meetlink
