// Package utils provides loose type conversions used when reading typed
// values out of data params.
package utils
