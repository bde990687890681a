// Package auditor runs a single textual security review of generated code.
//
// The review is a language model pass and nothing more. It is fail-safe:
// transport errors and responses that do not match the verdict schema are
// both turned into rejections, so an audit that cannot be understood never
// counts as a pass.
package auditor
