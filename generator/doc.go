// Package generator turns a task description and the failure history of a
// run into a candidate Python program.
//
// The whole history is replayed on every call, oldest first, so the model
// sees every earlier mistake and not only the latest one.
package generator
