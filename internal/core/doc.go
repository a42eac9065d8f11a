// Package core provides the business logic for order file imports.
//
// This package holds all domain logic independent of any transport layer.
// It is used by the web handlers and by tests without modification.
//
// # Architecture
//
// The package is organized around a few concepts:
//
//   - Parser: [ParseLine] validates one fixed-width record of [LineLength]
//     characters and reports every field problem as a [LineError].
//   - Aggregator: [Aggregator] folds parsed lines into users, orders and
//     products, keeping first-seen order and first-wins values.
//   - Store: [Store] holds the current snapshot. Readers always see a whole
//     upload, never a partial one.
//   - Service: [Service] is the entry point for uploads, queries and clears.
//
// # Record Layout
//
// Each line carries six fields at fixed positions:
//
//	userId     10  digits, zero padded
//	name       45  text, space padded
//	orderId    10  digits, zero padded
//	productId  10  digits, zero padded
//	value      12  decimal amount
//	date        8  yyyymmdd
//
// # Upload Flow
//
//  1. Client calls [Service.ProcessUpload] with an [UploadRequest]
//  2. Size and content type are checked, then a slot is taken from the
//     [UploadLimiter]
//  3. The body is streamed through [ProcessReader] with the BOM skipped
//  4. The result replaces the snapshot and an [UploadSummary] is recorded
//
// Lines that fail validation never abort an upload. They are reported in
// [UploadResult.Errors] and the rest of the file is still imported.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE006: File errors (size, line length, type, read failures)
//   - UPL002-UPL005: Upload errors (busy, cancelled, timeout)
//   - QRY001-QRY003: Query errors (date range, parameters, missing user)
//   - DB004, DB006: History database errors
package core
