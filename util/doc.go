// Package util holds small parsing helpers shared by the server and CLI.
package util
