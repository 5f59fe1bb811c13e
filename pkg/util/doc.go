// Package util provides small string helpers shared across canaryd packages.
//
//   - TruncateUTF16: cap text at a UTF-16 length for sinks that measure
//     size that way, such as Telegram messages
package util
