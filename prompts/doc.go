// Package prompts holds the fixed instructions given to the language model.
//
// The catalog is embedded into the binary from prompts.yaml so that prompt
// wording can be reviewed without reading Go code.
package prompts
