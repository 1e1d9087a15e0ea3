// Package fileutil provides the file system scanning used to walk
// project/sample/flowcell trees.
//
// ScanDirectory walks a directory, optionally recursively, and keeps files
// whose names end in one of the configured suffixes. Suffixes may span more
// than one dot (".fastq.gz") and are matched against the whole name, not
// filepath.Ext. Hidden directories are always skipped.
//
// Errors on individual entries (permission denied on a subdirectory, a
// dangling link) are collected in ScanResult.Errors and scanning continues.
// Only a missing or non-directory root is fatal.
//
//	result, err := fileutil.ScanDirectory(fcDir, fileutil.ScanOptions{
//	    Suffixes:  []string{".fastq", ".fastq.gz", ".fq", ".fq.gz"},
//	    Recursive: true,
//	})
//
// ListSubdirs enumerates the immediate subdirectories of a directory, which
// is how sample and flowcell directories are discovered.
package fileutil
