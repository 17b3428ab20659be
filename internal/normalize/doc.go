// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package normalize renders loosely-shaped message content to display text.
//
// The backend stores message content as a plain string, as an object with a
// text field, or as an array of typed parts (text, image, file, or anything
// else). This package flattens every shape to a markdown-ish string and never
// fails: the worst case is a fenced JSON block or the value's string form.
//
// # Key Functions
//
//   - Content: render a whole content value
//   - Part: render one element of a parts array
//   - Pretty: strings unchanged, everything else indented JSON
//   - Loose: unwrap JSON that was delivered as a JSON-encoded string
//   - IsEmpty: report whether an argument value carries nothing to show
//
// # Usage
//
//	text := normalize.Content(msg.Content)
//	desc := normalize.Pretty(normalize.Loose(call.Args))
//
// Key order of objects is taken from the source bytes, so pretty output
// matches what the server sent.
package normalize
