// Package model defines the data types shared by the registration handler
// and the record stores.
//
// Conventions:
//   - IDs: Discord snowflakes are kept as strings
//   - Optional fields are empty strings, never nil
package model
