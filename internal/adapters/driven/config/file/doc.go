// Package file implements the configuration loader: a typed struct
// populated from a TOML file via github.com/pelletier/go-toml/v2. Every
// key is optional; Load fills unset fields with documented defaults and
// validates the result before returning.
package file
