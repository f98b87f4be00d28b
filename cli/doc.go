// Package cli wires the cellform commands, flags, and configuration
// sources into a [kong] parser.
//
// Flag values resolve in order of precedence: command line, then the
// user's config file (JSON or YAML under the configuration directory),
// then built-in defaults. Logger flags additionally apply during an early
// argument scan so that log output produced while parsing already honors
// them.
//
// [kong]: https://github.com/alecthomas/kong
package cli
