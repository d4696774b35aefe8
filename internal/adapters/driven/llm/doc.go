// Package llm holds behaviour shared by the completion adapters: the
// rate-limit sentinel they report and a decorator that paces calls.
package llm
