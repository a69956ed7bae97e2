// Package domain defines the core domain models for the NSI-DDS
// notification receiver.
//
// Domain models are plain values without IO dependencies:
//
//   - Errors: structured error codes for decoding, encoding and service
//     failures, matched with errors.Is on the code
//   - Record: the summary of one received notification list, as kept in
//     the inbox
package domain
