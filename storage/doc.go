// Package storage provides the object storage abstraction behind output
// records, with pluggable backends.
//
// # Backends
//
//   - storage/local: local filesystem, the default
//   - storage/s3: Amazon S3 and S3-compatible storage
//
// # Configuration
//
//	record:
//	  storage:
//	    provider: "s3"
//	    bucket: "meeting-records"
//	    region: "us-east-1"
package storage
