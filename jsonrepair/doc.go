// Package jsonrepair recovers JSON values from model output that may be
// wrapped in markdown fences, surrounded by prose, or truncated.
//
// ParseLenient never fails. When nothing can be recovered it returns an
// empty container shaped like the text's leading bracket, and callers treat
// that as "no items extracted".
package jsonrepair
